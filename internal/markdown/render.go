package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/sitegen/internal/frontmatter"
)

// converter is safe for concurrent use once constructed.
var converter = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

// Fragment renders a Markdown body (frontmatter already removed) to an HTML
// fragment without any document wrapper.
func Fragment(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := converter.Convert(body, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Document renders a complete HTML document for src. Frontmatter in src is
// skipped; the <head> is built from meta alone.
func Document(src []byte, meta Metadata) (string, error) {
	doc, err := splitBody(src)
	if err != nil {
		return "", err
	}
	body, err := Fragment(doc)
	if err != nil {
		return "", err
	}
	return Page(body, meta), nil
}

// BodyFragment renders the body of src, frontmatter removed, to an HTML
// fragment.
func BodyFragment(src []byte) (string, error) {
	body, err := splitBody(src)
	if err != nil {
		return "", err
	}
	return Fragment(body)
}

func splitBody(src []byte) ([]byte, error) {
	doc, err := frontmatter.Split(src)
	if err != nil {
		return nil, err
	}
	return doc.Body, nil
}

// Page wraps an already rendered body fragment into a full HTML document whose
// head reflects meta.
func Page(body string, meta Metadata) string {
	var b strings.Builder
	b.WriteString("<!doctype html>\n")

	htmlAttrs := make([]Attribute, 0, len(meta.HTML)+2)
	if meta.Lang != "" {
		htmlAttrs = append(htmlAttrs, Attribute{Name: "lang", Value: meta.Lang})
	}
	if meta.Dir != "" {
		htmlAttrs = append(htmlAttrs, Attribute{Name: "dir", Value: meta.Dir})
	}
	htmlAttrs = append(htmlAttrs, meta.HTML...)
	b.WriteString(startTag("html", htmlAttrs))
	b.WriteString("\n  <head>\n")

	head := []string{
		element(atom.Meta, []Attribute{{Name: "charset", Value: "utf-8"}}, ""),
	}
	if meta.Title != "" {
		head = append(head, element(atom.Title, nil, meta.Title))
	}
	head = append(head, element(atom.Meta, []Attribute{
		{Name: "name", Value: "viewport"},
		{Name: "content", Value: "width=device-width, initial-scale=1"},
	}, ""))
	if len(meta.Base) > 0 {
		head = append(head, element(atom.Base, meta.Base, ""))
	}
	for _, attrs := range meta.Meta {
		head = append(head, element(atom.Meta, attrs, ""))
	}
	for _, attrs := range meta.Link {
		head = append(head, element(atom.Link, attrs, ""))
	}
	for _, attrs := range meta.Script {
		head = append(head, element(atom.Script, attrs, ""))
	}
	for _, h := range head {
		b.WriteString("    ")
		b.WriteString(h)
		b.WriteString("\n")
	}

	b.WriteString("  </head>\n  ")
	b.WriteString(startTag("body", meta.Body))
	b.WriteString("\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("  </body>\n</html>\n")
	return b.String()
}

func element(a atom.Atom, attrs []Attribute, textContent string) string {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for _, attr := range attrs {
		n.Attr = append(n.Attr, html.Attribute{Key: attr.Name, Val: attr.Value})
	}
	if textContent != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: textContent})
	}
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return ""
	}
	return b.String()
}

func startTag(name string, attrs []Attribute) string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(name)
	for _, a := range attrs {
		b.WriteString(" ")
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Value))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	return b.String()
}

// FirstHeading returns the plain text of the first level-1 heading in body,
// or "" when there is none.
func FirstHeading(body []byte) string {
	root := converter.Parser().Parse(text.NewReader(body))
	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		if h.Level == 1 {
			title = strings.TrimSpace(plainText(h, body))
			return gmast.WalkStop, nil
		}
		return gmast.WalkSkipChildren, nil
	})
	return title
}

func plainText(n gmast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteString(" ")
			}
		case *gmast.String:
			b.Write(t.Value)
		default:
			b.WriteString(plainText(c, source))
		}
	}
	return b.String()
}
