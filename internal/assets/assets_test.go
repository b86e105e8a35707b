package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile_CreatesParentsWithPublicMode(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "a", "b", "index.html")

	require.NoError(t, WriteBytes(dst, []byte("<p>x</p>")))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", string(data))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, fileMode, info.Mode().Perm())

	require.NoError(t, WriteBytes(dst, []byte("<p>y</p>")))
	data, err = os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "<p>y</p>", string(data))
}

func TestLedger_CopyTreeMirrorsFiles(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "img"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(src, "img", "logo.png"), []byte{0x89, 'P', 'N', 'G'}, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "robots.txt"), []byte("User-agent: *"), 0o600))

	ledger := NewLedger(src, dest)
	n, failures, err := ledger.CopyTree(t.Context())
	require.NoError(t, err)
	assert.Empty(t, failures)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{filepath.Join(src, "img", "logo.png"), filepath.Join(src, "robots.txt")}, ledger.Sources())

	data, err := os.ReadFile(filepath.Join(dest, "img", "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)
}

func TestLedger_CopyTreeMissingSourceCopiesNothing(t *testing.T) {
	ledger := NewLedger(filepath.Join(t.TempDir(), "none"), t.TempDir())
	n, failures, err := ledger.CopyTree(t.Context())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, failures)
	assert.Empty(t, ledger.Sources())
}

func TestLedger_CopyAndRemoveFile(t *testing.T) {
	srcRoot := t.TempDir()
	destRoot := t.TempDir()
	src := filepath.Join(srcRoot, "docs", "file.pdf")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o750))
	require.NoError(t, os.WriteFile(src, []byte("pdf"), 0o600))

	ledger := NewLedger(srcRoot, destRoot)
	dst, err := ledger.Copy(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(destRoot, "docs", "file.pdf"), dst)
	assert.FileExists(t, dst)

	removed, err := ledger.Remove(src)
	require.NoError(t, err)
	assert.Equal(t, []string{dst}, removed)
	assert.NoFileExists(t, dst)
	assert.NoDirExists(t, filepath.Join(destRoot, "docs"), "empty output directory is pruned")
	assert.DirExists(t, destRoot)

	removed, err = ledger.Remove(src)
	require.NoError(t, err)
	assert.Empty(t, removed)

	// Already gone.
	require.NoError(t, Delete(dst))
}

func TestLedger_RemoveDirectoryKeepsForeignFiles(t *testing.T) {
	srcRoot := t.TempDir()
	destRoot := t.TempDir()
	dir := filepath.Join(srcRoot, "blog")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "img"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img", "a.png"), []byte("a"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0o600))

	ledger := NewLedger(srcRoot, destRoot)
	_, _, err := ledger.CopyTree(t.Context())
	require.NoError(t, err)

	// Written by another tree into the same output directory.
	foreign := filepath.Join(destRoot, "blog", "article.html")
	require.NoError(t, os.WriteFile(foreign, []byte("<p>x</p>"), 0o600))

	removed, err := ledger.Remove(dir)
	require.NoError(t, err)
	assert.Len(t, removed, 2)
	assert.FileExists(t, foreign)
	assert.NoFileExists(t, filepath.Join(destRoot, "blog", "b.txt"))
	assert.NoDirExists(t, filepath.Join(destRoot, "blog", "img"))
	assert.Empty(t, ledger.Sources())
}

func TestLedger_RemoveRootNeverDeletesDestRoot(t *testing.T) {
	srcRoot := t.TempDir()
	destRoot := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcRoot, "a.txt"), []byte("a"), 0o600))

	ledger := NewLedger(srcRoot, destRoot)
	_, err := ledger.Copy(filepath.Join(srcRoot, "a.txt"))
	require.NoError(t, err)

	removed, err := ledger.Remove(srcRoot)
	require.NoError(t, err)
	assert.Len(t, removed, 1)
	assert.DirExists(t, destRoot)
}

func TestPrune_StopsAtNonEmptyDirectory(t *testing.T) {
	destRoot := t.TempDir()
	deep := filepath.Join(destRoot, "a", "b", "c")
	require.NoError(t, os.MkdirAll(deep, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(destRoot, "a", "keep.txt"), []byte("k"), 0o600))

	Prune(deep, destRoot)
	assert.NoDirExists(t, filepath.Join(destRoot, "a", "b"))
	assert.DirExists(t, filepath.Join(destRoot, "a"))
}
