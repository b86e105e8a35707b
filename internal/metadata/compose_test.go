package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/markdown"
)

func TestCompose_FrontmatterLinkPrecedesGlobalStyleSheet(t *testing.T) {
	src := []byte("---\nlink:\n  - rel: stylesheet\n    href: page.css\n---\nbody\n")

	meta, err := Compose(src, "/public/blog", Options{StyleSheets: []string{"/public/style.css"}})
	require.NoError(t, err)
	require.Equal(t, [][]markdown.Attribute{
		{{Name: "rel", Value: "stylesheet"}, {Name: "href", Value: "page.css"}},
		{{Name: "rel", Value: "stylesheet"}, {Name: "href", Value: "../style.css"}},
	}, meta.Link)
}

func TestCompose_ScriptsRelativeAndAbsolute(t *testing.T) {
	meta, err := Compose([]byte("# Hi\n"), "/public/blog/2022/04", Options{
		Scripts: []string{
			"/public/js/app.js",
			"https://cdn.jsdelivr.net/npm/mermaid/dist/mermaid.min.js",
			"//example.com/x.js",
		},
	})
	require.NoError(t, err)
	require.Equal(t, [][]markdown.Attribute{
		{{Name: "type", Value: "text/javascript"}, {Name: "src", Value: "../../../js/app.js"}},
		{{Name: "type", Value: "text/javascript"}, {Name: "src", Value: "https://cdn.jsdelivr.net/npm/mermaid/dist/mermaid.min.js"}},
		{{Name: "type", Value: "text/javascript"}, {Name: "src", Value: "//example.com/x.js"}},
	}, meta.Script)
}

func TestCompose_RelativeProjectPaths(t *testing.T) {
	meta, err := Compose([]byte("# T\n"), "public/blog", Options{
		StyleSheets: []string{"public/css/main.css"},
		Scripts:     []string{"public/app.js"},
	})
	require.NoError(t, err)
	require.Equal(t, [][]markdown.Attribute{
		{{Name: "rel", Value: "stylesheet"}, {Name: "href", Value: "../css/main.css"}},
	}, meta.Link)
	require.Equal(t, [][]markdown.Attribute{
		{{Name: "type", Value: "text/javascript"}, {Name: "src", Value: "../app.js"}},
	}, meta.Script)

	meta, err = Compose([]byte("# T\n"), "public", Options{StyleSheets: []string{"public/style.css"}})
	require.NoError(t, err)
	require.Equal(t, "style.css", meta.Link[0][1].Value)
}

func TestCompose_EmptyListsDoNotCreateKeys(t *testing.T) {
	meta, err := Compose([]byte("---\ntitle: A\n---\n"), "/public", Options{StyleSheets: []string{}, Scripts: nil})
	require.NoError(t, err)
	assert.Nil(t, meta.Link)
	assert.Nil(t, meta.Script)
}

func TestCompose_CustomKeysAndSiteTitle(t *testing.T) {
	src := []byte("---\ntitle: Article\ndate: \"2022-04-20\"\ncategories: [go]\n---\n")

	meta, err := Compose(src, "/public", Options{
		CustomKeys: []string{"date", "categories"},
		SiteTitle:  "My Web Site",
	})
	require.NoError(t, err)
	assert.Equal(t, "Article - My Web Site", meta.Title)
	assert.Equal(t, map[string]any{"date": "2022-04-20", "categories": []any{"go"}}, meta.Custom)
	assert.Nil(t, meta.Meta)
}

func TestCompose_InvalidFrontmatter(t *testing.T) {
	_, err := Compose([]byte("---\ntitle: [broken\n---\n"), "/public", Options{})
	require.Error(t, err)
}

func TestTitle(t *testing.T) {
	tests := []struct {
		page, site, want string
	}{
		{"Page", "Site", "Page - Site"},
		{"", "Site", "Site"},
		{"Page", "", "Page"},
		{"", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Title(tt.page, tt.site))
	}
}
