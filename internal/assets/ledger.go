package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/paths"
)

// Ledger copies the passthrough files of one source tree and remembers where
// each copy went. Several trees mirror into the same output root, so removals
// go through the ledger: only files this tree wrote are ever deleted.
type Ledger struct {
	srcRoot  string
	destRoot string

	mu    sync.Mutex
	dests map[string]string
}

// NewLedger returns an empty ledger mirroring srcRoot into destRoot.
func NewLedger(srcRoot, destRoot string) *Ledger {
	return &Ledger{srcRoot: srcRoot, destRoot: destRoot, dests: map[string]string{}}
}

// Copy copies src to its mirror and records it.
func (l *Ledger) Copy(src string) (string, error) {
	dst, err := CopyTo(src, l.srcRoot, l.destRoot)
	if err != nil {
		return dst, err
	}
	l.mu.Lock()
	l.dests[filepath.Clean(src)] = dst
	l.mu.Unlock()
	return dst, nil
}

// CopyTree mirrors every file below the source root. A missing root copies
// nothing. Files that fail are reported, the rest are still copied.
func (l *Ledger) CopyTree(ctx context.Context) (int, []content.FileError, error) {
	if _, err := os.Stat(l.srcRoot); errors.Is(err, fs.ErrNotExist) {
		return 0, nil, nil
	}
	var (
		copied   int
		failures []content.FileError
	)
	err := filepath.WalkDir(l.srcRoot, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == l.srcRoot {
				return err
			}
			failures = append(failures, content.FileError{Path: p, Stage: content.StageRead, Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, err := l.Copy(p); err != nil {
			failures = append(failures, content.FileError{Path: p, Stage: content.StageCopy, Err: err})
			return nil
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, failures, fmt.Errorf("copy %s: %w", l.srcRoot, err)
	}
	return copied, failures, nil
}

// Remove deletes the recorded copy of src, or of every file below src when
// it was a directory, and prunes output directories left empty. Sources the
// ledger never copied are ignored. The deleted destinations are returned.
func (l *Ledger) Remove(src string) ([]string, error) {
	l.mu.Lock()
	var dests []string
	for s, dst := range l.dests {
		if paths.Within(src, s) {
			dests = append(dests, dst)
			delete(l.dests, s)
		}
	}
	l.mu.Unlock()

	slices.Sort(dests)
	var errs []error
	for _, dst := range dests {
		if err := Delete(dst); err != nil {
			errs = append(errs, err)
			continue
		}
		Prune(filepath.Dir(dst), l.destRoot)
	}
	return dests, errors.Join(errs...)
}

// Sources lists the recorded sources in sorted order.
func (l *Ledger) Sources() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.dests))
	for s := range l.dests {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// Reset forgets every recorded copy without touching the output tree.
func (l *Ledger) Reset() {
	l.mu.Lock()
	l.dests = map[string]string{}
	l.mu.Unlock()
}

// Prune removes dir and its parents while they are empty, stopping at
// destRoot, which is never removed.
func Prune(dir, destRoot string) {
	root := filepath.Clean(destRoot)
	for dir = filepath.Clean(dir); dir != root && paths.Within(root, dir); dir = filepath.Dir(dir) {
		if err := os.Remove(dir); err != nil {
			return
		}
	}
}
