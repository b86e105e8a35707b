package markdown

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitegen/internal/frontmatter"
)

// Attribute is one name/value pair of an HTML element.
type Attribute struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Metadata is the structured frontmatter of a page.
//
// Meta, Link and Script hold one entry per element, each entry being the
// element's attributes in declaration order. A nil slice means the page never
// declared the element; templates rely on that to skip whole sections.
type Metadata struct {
	Title  string         `json:"title,omitempty" yaml:"title,omitempty"`
	Lang   string         `json:"lang,omitempty" yaml:"lang,omitempty"`
	Dir    string         `json:"dir,omitempty" yaml:"dir,omitempty"`
	HTML   []Attribute    `json:"html,omitempty" yaml:"html,omitempty"`
	Body   []Attribute    `json:"body,omitempty" yaml:"body,omitempty"`
	Base   []Attribute    `json:"base,omitempty" yaml:"base,omitempty"`
	Meta   [][]Attribute  `json:"meta,omitempty" yaml:"meta,omitempty"`
	Link   [][]Attribute  `json:"link,omitempty" yaml:"link,omitempty"`
	Script [][]Attribute  `json:"script,omitempty" yaml:"script,omitempty"`
	Custom map[string]any `json:"custom,omitempty" yaml:"custom,omitempty"`
}

// Frontmatter keys with rendering semantics. Every other scalar key becomes a
// <meta name=key content=value> element unless it is declared custom.
const (
	keyTitle  = "title"
	keyLang   = "lang"
	keyDir    = "dir"
	keyHTML   = "html"
	keyBody   = "body"
	keyBase   = "base"
	keyMeta   = "meta"
	keyLink   = "link"
	keyScript = "script"
)

// Extract splits src into frontmatter and body and builds the page Metadata.
//
// Keys listed in customKeys are decoded as-is into Metadata.Custom instead of
// being treated as rendering directives. When the frontmatter carries no title
// the text of the first level-1 heading of the body is used.
func Extract(src []byte, customKeys []string) (Metadata, []byte, error) {
	doc, err := frontmatter.Split(src)
	if err != nil {
		return Metadata{}, nil, err
	}
	fields, err := frontmatter.Parse(doc.Frontmatter)
	if err != nil {
		return Metadata{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	var meta Metadata
	for _, f := range fields {
		if slices.Contains(customKeys, f.Key) {
			var v any
			if err := f.Value.Decode(&v); err != nil {
				return Metadata{}, nil, fmt.Errorf("custom key %q: %w", f.Key, err)
			}
			if meta.Custom == nil {
				meta.Custom = map[string]any{}
			}
			meta.Custom[f.Key] = v
			continue
		}

		switch f.Key {
		case keyTitle:
			meta.Title = scalar(f.Value)
		case keyLang:
			meta.Lang = scalar(f.Value)
		case keyDir:
			meta.Dir = scalar(f.Value)
		case keyHTML:
			meta.HTML = attributes(f.Value)
		case keyBody:
			meta.Body = attributes(f.Value)
		case keyBase:
			meta.Base = attributes(f.Value)
		case keyMeta:
			meta.Meta = append(meta.Meta, elements(f.Value)...)
		case keyLink:
			meta.Link = elements(f.Value)
		case keyScript:
			meta.Script = elements(f.Value)
		default:
			if f.Value.Kind == yaml.ScalarNode {
				meta.Meta = append(meta.Meta, []Attribute{
					{Name: "name", Value: f.Key},
					{Name: "content", Value: f.Value.Value},
				})
			}
		}
	}

	if meta.Title == "" {
		meta.Title = FirstHeading(doc.Body)
	}
	return meta, doc.Body, nil
}

func scalar(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}

// attributes reads a mapping of scalar values in declaration order.
func attributes(n *yaml.Node) []Attribute {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	var out []Attribute
	for i := 0; i+1 < len(n.Content); i += 2 {
		v := n.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			continue
		}
		out = append(out, Attribute{Name: n.Content[i].Value, Value: v.Value})
	}
	return out
}

// elements reads a sequence of attribute mappings. A single mapping is
// accepted as a one-element list.
func elements(n *yaml.Node) [][]Attribute {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.MappingNode:
		if attrs := attributes(n); len(attrs) > 0 {
			return [][]Attribute{attrs}
		}
		return nil
	case yaml.SequenceNode:
		var out [][]Attribute
		for _, item := range n.Content {
			if attrs := attributes(item); len(attrs) > 0 {
				out = append(out, attrs)
			}
		}
		return out
	default:
		return nil
	}
}

// Clone returns a deep copy of m for callers that append to its lists.
func (m Metadata) Clone() Metadata {
	out := m
	out.HTML = slices.Clone(m.HTML)
	out.Body = slices.Clone(m.Body)
	out.Base = slices.Clone(m.Base)
	out.Meta = cloneElements(m.Meta)
	out.Link = cloneElements(m.Link)
	out.Script = cloneElements(m.Script)
	if m.Custom != nil {
		out.Custom = make(map[string]any, len(m.Custom))
		for k, v := range m.Custom {
			out.Custom[k] = v
		}
	}
	return out
}

func cloneElements(in [][]Attribute) [][]Attribute {
	if in == nil {
		return nil
	}
	out := make([][]Attribute, len(in))
	for i, attrs := range in {
		out[i] = slices.Clone(attrs)
	}
	return out
}
