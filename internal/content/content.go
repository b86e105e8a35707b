// Package content holds the in-memory record of every Markdown page of a site.
package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/sitegen/internal/frontmatter"
	"git.home.luguber.info/inful/sitegen/internal/markdown"
	"git.home.luguber.info/inful/sitegen/internal/metadata"
	"git.home.luguber.info/inful/sitegen/internal/paths"
)

// Content pairs a Markdown source with everything derived from it.
type Content struct {
	SourcePath string            `json:"source_path"`
	OutputPath string            `json:"output_path"`
	Metadata   markdown.Metadata `json:"metadata"`
	Markdown   string            `json:"markdown"`
	// Fingerprint identifies the source text; it changes whenever the
	// frontmatter or the body does.
	Fingerprint string `json:"fingerprint"`
}

// New builds the Content of the Markdown source src located at sourcePath.
// The output path is always derived from sourcePath.
func New(sourcePath string, src []byte, pagesRoot, destRoot string, opts metadata.Options) (Content, error) {
	out := paths.DestPath(sourcePath, pagesRoot, destRoot, ".html")
	meta, err := metadata.Compose(src, filepath.Dir(out), opts)
	if err != nil {
		return Content{}, err
	}
	return Content{
		SourcePath:  sourcePath,
		OutputPath:  out,
		Metadata:    meta,
		Markdown:    string(src),
		Fingerprint: fingerprint(src),
	}, nil
}

// Load reads sourcePath from disk and builds its Content.
func Load(sourcePath, pagesRoot, destRoot string, opts metadata.Options) (Content, error) {
	src, err := os.ReadFile(sourcePath) // #nosec G304 -- page paths come from the configured pages tree
	if err != nil {
		return Content{}, fmt.Errorf("read %s: %w", sourcePath, err)
	}
	return New(sourcePath, src, pagesRoot, destRoot, opts)
}

func fingerprint(src []byte) string {
	doc, err := frontmatter.Split(src)
	if err != nil {
		return mdfp.CalculateFingerprintFromParts("", string(src))
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(doc.Frontmatter), "\n"), string(doc.Body))
}
