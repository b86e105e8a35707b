package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDestPath(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		srcRoot  string
		destRoot string
		ext      string
		want     string
	}{
		{"extension override", "/src/pages/blog/sample.md", "/src/pages", "/public", ".html", "/public/blog/sample.html"},
		{"no override keeps sub path", "/src/pages/blog/img/a.png", "/src/pages", "/public", "", "/public/blog/img/a.png"},
		{"root level file", "/src/pages/index.md", "/src/pages", "/public", ".html", "/public/index.html"},
		{"dotted name only last extension replaced", "/src/pages/v1.2/notes.final.md", "/src/pages", "/public", ".html", "/public/v1.2/notes.final.html"},
		{"no extension gains one", "/src/pages/README", "/src/pages", "/public", ".html", "/public/README.html"},
		{"relative roots", "src/pages/a/b.md", "src/pages", "public", ".html", "public/a/b.html"},
		{"outside root is not validated", "/elsewhere/x.md", "/src/pages", "/public", ".html", "/elsewhere/x.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DestPath(filepath.FromSlash(tt.src), filepath.FromSlash(tt.srcRoot), filepath.FromSlash(tt.destRoot), tt.ext)
			require.Equal(t, filepath.Clean(filepath.FromSlash(tt.want)), got)
		})
	}
}

func TestDestPath_OutsideRootLexicallyRelative(t *testing.T) {
	// "/elsewhere/x.md" relative to "/src/pages" is "../../elsewhere/x.md";
	// joining with "/public" climbs out again. The mapper stays total.
	got := DestPath("/elsewhere/x.md", "/src/pages", "/public", "")
	require.Equal(t, filepath.Clean("/public/../../elsewhere/x.md"), got)
}

func TestIsAbsoluteURL(t *testing.T) {
	cases := map[string]bool{
		"https://cdnjs.cloudflare.com/ajax/libs/mermaid/9.0.1/mermaid.min.js": true,
		"http://example.com/a.css": true,
		"//cdn.example.com/a.js":   true,
		"data:text/css,body{}":     true,
		"style.css":                false,
		"/style.css":               false,
		"lib/sample.js":            false,
		"C:\\site\\style.css":      false,
		"":                         false,
	}
	for in, want := range cases {
		require.Equal(t, want, IsAbsoluteURL(in), in)
	}
}

func TestRelativeHref(t *testing.T) {
	require.Equal(t, "../../../style.css", RelativeHref("/blog/2022/04", "/style.css"))
	require.Equal(t, "style.css", RelativeHref("/public", "/public/style.css"))
	require.Equal(t, "lib/sample.js", RelativeHref("/public", "/public/lib/sample.js"))
	require.Equal(t, "../lib/sample.js", RelativeHref("/public/blog", "/public/lib/sample.js"))
}

func TestIsMarkdownAndWithin(t *testing.T) {
	require.True(t, IsMarkdown("a/b/index.md"))
	require.False(t, IsMarkdown("README.MD"))
	require.False(t, IsMarkdown("notes.markdown"))
	require.False(t, IsMarkdown("a/b/logo.png"))

	require.True(t, Within("/src/pages", "/src/pages"))
	require.True(t, Within("/src/pages", "/src/pages/blog/a.md"))
	require.False(t, Within("/src/pages", "/src/pagesx/a.md"))
	require.False(t, Within("/src/pages", "/src/assets/a.png"))
}
