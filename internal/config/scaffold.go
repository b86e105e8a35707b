package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/frontmatter"
)

const starterTemplate = `<header><a href="{{.Site.root}}index.html">{{.Site.title}}</a></header>
<main>
{{.HTML}}
</main>
<nav>
  <ul>
  {{- range .Site.pages}}
    <li><a href="{{$.Site.root}}{{.Href}}">{{.Title}}</a></li>
  {{- end}}
  </ul>
</nav>
`

const starterStyle = `$text: #222;

body {
  color: $text;
  font-family: system-ui, sans-serif;
  max-width: 48rem;
  margin: 0 auto;
}
`

type starterPage struct {
	rel    string
	fields map[string]any
	body   string
}

var starterPages = []starterPage{
	{
		rel:    "index.md",
		fields: map[string]any{"title": "Welcome", "template": "index"},
		body:   "\nThis site was generated by sitegen.\n",
	},
	{
		rel:    filepath.Join("blog", "first-post.md"),
		fields: map[string]any{"title": "First post", "tags": []any{"example"}},
		body:   "\n# First post\n\nWrite Markdown here.\n",
	},
}

// Scaffold writes a starter site matching Example into the conventional
// directories below root. Existing files are kept unless force is set. The
// written paths are returned.
func Scaffold(root string, force bool) ([]string, error) {
	example := Example()
	files := map[string][]byte{
		filepath.Join(root, example.Paths.Templates, "index.html"): []byte(starterTemplate),
		filepath.Join(root, example.Paths.Styles, "main.scss"):     []byte(starterStyle),
	}
	for _, p := range starterPages {
		data, err := frontmatter.Join(p.fields, []byte(p.body))
		if err != nil {
			return nil, serrors.InternalError("failed to render starter page", err)
		}
		files[filepath.Join(root, example.Paths.Pages, p.rel)] = data
	}
	if err := os.MkdirAll(filepath.Join(root, example.Paths.Assets), 0o755); err != nil { //nolint:gosec // public source tree
		return nil, serrors.ConfigInvalid(root, err)
	}

	var written []string
	for _, path := range sortedKeys(files) {
		if _, err := os.Stat(path); err == nil && !force {
			continue
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return written, serrors.ConfigInvalid(path, err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec // public source tree
			return written, serrors.ConfigInvalid(path, err)
		}
		if err := os.WriteFile(path, files[path], 0o644); err != nil { //nolint:gosec // site sources are not sensitive
			return written, serrors.ConfigInvalid(path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
