// Package render produces the final HTML document of a page, optionally
// wrapping its Markdown body in a site template.
package render

import (
	"errors"
	"fmt"
	"html/template"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/markdown"
)

// Placeholder stands in for the page body while the document skeleton is
// rendered. It must never occur in real page content.
const Placeholder = "4bd5d00d-52a6-12c5-7ba7-3b7ac0b352e6"

// placeholderParagraph is how the Markdown renderer emits Placeholder.
const placeholderParagraph = "<p>" + Placeholder + "</p>"

var errPlaceholderMissing = errors.New("document skeleton has no body placeholder")

// PageData is the context a site template is evaluated with.
type PageData struct {
	// HTML is the page's own Markdown body rendered to HTML.
	HTML     template.HTML
	Metadata markdown.Metadata
	Site     map[string]any
}

// TemplateEngine evaluates a template source against page data.
type TemplateEngine interface {
	Execute(source string, data PageData) (string, error)
}

// Renderer turns Markdown plus metadata into a complete HTML document.
type Renderer struct {
	engine TemplateEngine
}

// NewRenderer returns a Renderer evaluating templates with engine. A nil
// engine selects the html/template based default.
func NewRenderer(engine TemplateEngine) *Renderer {
	if engine == nil {
		engine = NewHTMLEngine()
	}
	return &Renderer{engine: engine}
}

// Render returns the HTML document for src.
//
// With an empty tmpl the Markdown is rendered straight into a document whose
// head reflects meta. Otherwise a skeleton carrying the head is rendered around
// Placeholder, tmpl is evaluated with the page body, and the result replaces
// the placeholder paragraph of the skeleton exactly once.
func (r *Renderer) Render(src string, meta markdown.Metadata, tmpl string, site map[string]any) (string, error) {
	if tmpl == "" {
		return markdown.Document([]byte(src), meta)
	}

	skeleton, err := markdown.Document([]byte(Placeholder), meta)
	if err != nil {
		return "", fmt.Errorf("render skeleton: %w", err)
	}
	at := strings.LastIndex(skeleton, placeholderParagraph)
	if at < 0 {
		return "", errPlaceholderMissing
	}

	body, err := markdown.BodyFragment([]byte(src))
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	out, err := r.engine.Execute(tmpl, PageData{
		HTML:     template.HTML(body), //nolint:gosec // rendered from the site's own sources
		Metadata: meta,
		Site:     site,
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(skeleton) + len(out))
	b.WriteString(skeleton[:at])
	b.WriteString(out)
	b.WriteString(skeleton[at+len(placeholderParagraph):])
	return b.String(), nil
}
