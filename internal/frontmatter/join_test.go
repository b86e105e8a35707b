package frontmatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJoin_NoFieldsReturnsBody(t *testing.T) {
	out, err := Join(nil, []byte("# Title\n"))
	require.NoError(t, err)
	require.Equal(t, "# Title\n", string(out))
}

func TestJoin_SortedKeysRoundTrip(t *testing.T) {
	fields := map[string]any{
		"title": "Home",
		"tags":  []any{"a", "b"},
		"extra": map[string]any{"b": 2, "a": 1},
		"draft": false,
	}
	out, err := Join(fields, []byte("Body\n"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(out), "---\ndraft: false\nextra:\n  a: 1\n  b: 2\ntags:\n"))
	require.True(t, strings.HasSuffix(string(out), "title: Home\n---\nBody\n"))

	doc, err := Split(out)
	require.NoError(t, err)
	require.Equal(t, "Body\n", string(doc.Body))
	parsed, err := ParseMap(doc.Frontmatter)
	require.NoError(t, err)
	require.Equal(t, "Home", parsed["title"])
	require.Equal(t, []any{"a", "b"}, parsed["tags"])
}
