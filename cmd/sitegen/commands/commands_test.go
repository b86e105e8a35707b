package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/config"
	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func newProject(t *testing.T, cfgBody string) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "pages", "index.md"), "---\ntitle: Home\n---\n\nWelcome\n")
	writeFile(t, filepath.Join(root, "src", "pages", "blog", "article.md"), "# Article\n")
	writeFile(t, filepath.Join(root, "src", "templates", "index.html"), "<main>{{.HTML}}</main>")
	writeFile(t, filepath.Join(root, "src", "styles", "site.css"), "p{}")
	cfgPath := filepath.Join(root, config.DefaultFile)
	writeFile(t, cfgPath, cfgBody)
	return cfgPath
}

func TestBuildCmd_TemplatedSite(t *testing.T) {
	cfgPath := newProject(t, `site:
  title: My Web Site
hook: templated
styles:
  - src: site.css
    dest: css/site.css
`)
	cli := &CLI{Config: cfgPath}
	require.NoError(t, (&BuildCmd{}).Run(&Global{}, cli))

	dest := filepath.Join(filepath.Dir(cfgPath), "public")
	index, err := os.ReadFile(filepath.Join(dest, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "<main><p>Welcome</p>\n</main>")
	assert.Contains(t, string(index), "<title>Home - My Web Site</title>")
	assert.FileExists(t, filepath.Join(dest, "blog", "article.html"))
	css, err := os.ReadFile(filepath.Join(dest, "css", "site.css"))
	require.NoError(t, err)
	assert.Equal(t, "p{}", string(css))
}

func TestBuildCmd_ExplicitMissingConfig(t *testing.T) {
	cli := &CLI{Config: filepath.Join(t.TempDir(), "nope.yaml")}
	err := (&BuildCmd{}).Run(&Global{}, cli)
	require.Error(t, err)
	assert.True(t, serrors.IsCategory(err, serrors.CategoryConfig))
}

func TestNewStack_UnknownHookFallsBack(t *testing.T) {
	cfgPath := newProject(t, "hook: nonexistent\ndev:\n  metrics: true\n")
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	st, err := NewStack(cfg, true)
	require.NoError(t, err)
	defer st.Close()
	require.NotNil(t, st.Registry)

	report, err := st.Site.Build(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Pages)
	assert.Empty(t, report.Failures)

	families, err := st.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitegen.yaml")
	cli := &CLI{Config: path}
	require.NoError(t, (&InitCmd{}).Run(&Global{}, cli))
	assert.FileExists(t, path)

	err := (&InitCmd{}).Run(&Global{}, cli)
	require.Error(t, err)
	assert.True(t, serrors.IsCategory(err, serrors.CategoryValidation))

	require.NoError(t, (&InitCmd{Force: true}).Run(&Global{}, cli))
}

func TestCLI_ConfigPathDefault(t *testing.T) {
	assert.Equal(t, config.DefaultFile, (&CLI{}).ConfigPath())
	assert.Equal(t, "x.yaml", (&CLI{Config: "x.yaml"}).ConfigPath())
}

func TestInitCmd_ScaffoldBuilds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitegen.yaml")
	cli := &CLI{Config: path}
	require.NoError(t, (&InitCmd{Scaffold: true}).Run(&Global{}, cli))

	cfg, err := cli.LoadConfig()
	require.NoError(t, err)
	// Keep the test independent of a dart-sass install.
	cfg.Styles = nil
	st, err := NewStack(cfg, false)
	require.NoError(t, err)
	defer st.Close()

	report, err := st.Site.Build(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Pages)
	assert.Empty(t, report.Failures)

	index, err := os.ReadFile(filepath.Join(cfg.Paths.Dest, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), `<a href="blog/first-post.html">First post</a>`)
	assert.Contains(t, string(index), "<title>Welcome - My Web Site</title>")
}
