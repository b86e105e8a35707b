package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is a Markdown source split at its YAML frontmatter delimiters.
type Document struct {
	// Frontmatter holds the raw YAML between the `---` lines (without them).
	Frontmatter []byte
	// Body is everything after the closing delimiter, or the whole input.
	Body []byte
	// HasFrontmatter is false when the input does not open with `---`.
	HasFrontmatter bool
}

// Field is one top-level frontmatter key with its undecoded YAML value.
// Keeping the node lets callers preserve key order inside nested mappings.
type Field struct {
	Key   string
	Value *yaml.Node
}

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// LF and CRLF line endings are both recognised. If the document does not start
// with a frontmatter delimiter the whole input is returned as Body.
func Split(content []byte) (Document, error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return Document{Body: content}, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return Document{Frontmatter: []byte{}, Body: content[start+len(open):], HasFrontmatter: true}, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter on the very last line has no trailing newline.
		tail := []byte(nl + "---")
		if bytes.HasSuffix(content, tail) {
			end := len(content) - len(tail)
			return Document{Frontmatter: content[start : end+len(nl)], Body: []byte{}, HasFrontmatter: true}, nil
		}
		return Document{}, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	return Document{
		Frontmatter:    content[start:end],
		Body:           content[start+idx+len(closeSeq):],
		HasFrontmatter: true,
	}, nil
}

// Parse decodes raw YAML frontmatter into its top-level fields, in document
// order. Empty input yields no fields. The root must be a mapping.
func Parse(frontmatter []byte) ([]Field, error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return nil, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(frontmatter, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("frontmatter must be a mapping, got %s", kindName(root.Kind))
	}

	fields := make([]Field, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		fields = append(fields, Field{Key: root.Content[i].Value, Value: root.Content[i+1]})
	}
	return fields, nil
}

// ParseMap decodes raw YAML frontmatter into a plain map.
func ParseMap(frontmatter []byte) (map[string]any, error) {
	if len(frontmatter) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectNewline(content []byte) string {
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			if i > 0 && content[i-1] == '\r' {
				return "\r\n"
			}
			return "\n"
		}
	}
	return "\n"
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	case yaml.MappingNode:
		return "mapping"
	default:
		return "document"
	}
}
