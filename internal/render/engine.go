package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// HTMLEngine is the default TemplateEngine. Parsed templates are cached by
// source so repeated renders of the same template parse it once.
type HTMLEngine struct {
	mu    sync.Mutex
	cache map[string]*template.Template
	funcs template.FuncMap
}

// NewHTMLEngine returns an empty engine with the standard helper functions.
func NewHTMLEngine() *HTMLEngine {
	return &HTMLEngine{
		cache: make(map[string]*template.Template),
		funcs: template.FuncMap{
			"safeHTML": func(s string) template.HTML { return template.HTML(s) }, //nolint:gosec // opt-in by template authors
			"join":     strings.Join,
		},
	}
}

// Execute implements TemplateEngine.
func (e *HTMLEngine) Execute(source string, data PageData) (string, error) {
	tpl, err := e.parse(source)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

func (e *HTMLEngine) parse(source string) (*template.Template, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if tpl, ok := e.cache[source]; ok {
		return tpl, nil
	}
	tpl, err := template.New("page").Funcs(e.funcs).Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	e.cache[source] = tpl
	return tpl, nil
}

// Templates maps a template name (the file name without extension) to its
// source.
type Templates map[string]string

// Names returns the template names in sorted order.
func (t Templates) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var templateExtensions = map[string]bool{
	".html":   true,
	".tmpl":   true,
	".gohtml": true,
}

// LoadTemplates reads every template file directly inside dir. A missing
// directory yields an empty set; an unreadable file is an error.
func LoadTemplates(dir string) (Templates, error) {
	out := Templates{}
	if dir == "" {
		return out, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("read templates dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !templateExtensions[ext] {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if _, dup := out[name]; dup {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name())) // #nosec G304 -- template dir from config
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", entry.Name(), err)
		}
		out[name] = string(raw)
	}
	return out, nil
}
