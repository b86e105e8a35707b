// Package metadata composes the final head metadata of a page from its
// frontmatter and the site wide style sheet and script injections.
package metadata

import (
	"fmt"

	"git.home.luguber.info/inful/sitegen/internal/markdown"
	"git.home.luguber.info/inful/sitegen/internal/paths"
)

// Options carries the site wide inputs of Compose.
type Options struct {
	// StyleSheets are destination paths (or absolute URLs) linked from every page.
	StyleSheets []string
	// Scripts are destination paths (or absolute URLs) loaded by every page.
	Scripts []string
	// CustomKeys are frontmatter keys routed into Metadata.Custom.
	CustomKeys []string
	// SiteTitle, when set, is appended to every page title.
	SiteTitle string
}

// Compose extracts the frontmatter of src and merges the configured style
// sheets and scripts into it.
//
// baseOutputDir is the directory that will contain the page's HTML file;
// project local references are made relative to it. Computed entries always
// follow the entries the page declared itself. An empty injection list leaves
// the corresponding field untouched.
func Compose(src []byte, baseOutputDir string, opts Options) (markdown.Metadata, error) {
	meta, _, err := markdown.Extract(src, opts.CustomKeys)
	if err != nil {
		return markdown.Metadata{}, fmt.Errorf("extract metadata: %w", err)
	}

	for _, sheet := range opts.StyleSheets {
		meta.Link = append(meta.Link, []markdown.Attribute{
			{Name: "rel", Value: "stylesheet"},
			{Name: "href", Value: reference(baseOutputDir, sheet)},
		})
	}
	for _, script := range opts.Scripts {
		meta.Script = append(meta.Script, []markdown.Attribute{
			{Name: "type", Value: "text/javascript"},
			{Name: "src", Value: reference(baseOutputDir, script)},
		})
	}

	meta.Title = Title(meta.Title, opts.SiteTitle)
	return meta, nil
}

// Title joins a page title with the site title ("Page - Site"). Either part
// may be empty.
func Title(page, site string) string {
	switch {
	case site == "":
		return page
	case page == "":
		return site
	default:
		return page + " - " + site
	}
}

// reference rewrites a project local target relative to baseDir. Both are
// expected in the same coordinate space, either both absolute or both
// relative to the same working directory.
func reference(baseDir, target string) string {
	if paths.IsAbsoluteURL(target) {
		return target
	}
	return paths.RelativeHref(baseDir, target)
}
