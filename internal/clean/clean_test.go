package clean

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	return path
}

func TestCleanSource(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "foo.src.cov")
	touch(t, dir, "foo.src.42.cov")
	keepOther := touch(t, dir, "bar.src.cov")
	keepSource := touch(t, dir, "foo.src")

	removed, err := New(nil).CleanSource(dir, "foo.src")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	assert.NoFileExists(t, filepath.Join(dir, "foo.src.cov"))
	assert.NoFileExists(t, filepath.Join(dir, "foo.src.42.cov"))
	assert.FileExists(t, keepOther)
	assert.FileExists(t, keepSource)
}

func TestCleanTree(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "pkg")
	require.NoError(t, os.Mkdir(sub, 0o755))
	touch(t, root, "foo.src.cov")
	touch(t, sub, "bar.src.7.cov")
	keep := touch(t, sub, "bar.src")

	removed, err := New(nil).CleanTree(root)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.FileExists(t, keep)
}

func TestCleanTreeNothingToDo(t *testing.T) {
	removed, err := New(nil).CleanTree(t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, removed)
}
