// Package assets copies passthrough files into the output tree and removes
// them again.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"git.home.luguber.info/inful/sitegen/internal/paths"
)

// fileMode is applied to files created in the output tree.
const fileMode fs.FileMode = 0o644

// WriteFile atomically replaces path with the contents of r, creating parent
// directories as needed. Readers of the output tree never see a partial file.
func WriteFile(path string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec // public output tree
		return fmt.Errorf("create output dir: %w", err)
	}
	_, statErr := os.Stat(path)
	if err := atomic.WriteFile(path, r); err != nil {
		return err
	}
	if errors.Is(statErr, fs.ErrNotExist) {
		// Fresh temp files are private; output is meant to be served.
		if err := os.Chmod(path, fileMode); err != nil {
			return fmt.Errorf("chmod %s: %w", path, err)
		}
	}
	return nil
}

// WriteBytes is WriteFile for an in-memory payload.
func WriteBytes(path string, data []byte) error {
	return WriteFile(path, bytes.NewReader(data))
}

// Copy copies src byte for byte to dst.
func Copy(src, dst string) error {
	f, err := os.Open(src) // #nosec G304 -- source trees come from config
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return WriteFile(dst, f)
}

// CopyTo copies src to its mirror under destRoot and returns the destination.
func CopyTo(src, srcRoot, destRoot string) (string, error) {
	dst := paths.DestPath(src, srcRoot, destRoot, "")
	return dst, Copy(src, dst)
}

// Delete removes path. A file that is already gone is not an error.
func Delete(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
