// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (t.TempDir)
// PURPOSE: Verify the afero-backed FS keeps symlinks literal

package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotlinks/pkg/filesystem"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSSymlinks(t *testing.T) {
	dir := t.TempDir()
	fsys := filesystem.NewOS()

	source := filepath.Join(dir, "repo", "nvim")
	require.NoError(t, fsys.MkdirAll(source, 0755))

	link := filepath.Join(dir, "home", ".config", "nvim")
	require.NoError(t, fsys.MkdirAll(filepath.Dir(link), 0755))
	require.NoError(t, fsys.Symlink(source, link))

	info, err := fsys.Lstat(link)
	require.NoError(t, err)
	assert.True(t, info.Mode()&os.ModeSymlink != 0)

	target, err := fsys.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, source, target)

	// Stat follows the link
	info, err = fsys.Stat(link)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDanglingSymlinkIsStillVisible(t *testing.T) {
	dir := t.TempDir()
	fsys := filesystem.NewOS()

	link := filepath.Join(dir, "dangling")
	require.NoError(t, fsys.Symlink(filepath.Join(dir, "missing"), link))

	_, err := fsys.Stat(link)
	assert.True(t, os.IsNotExist(err))

	info, err := fsys.Lstat(link)
	require.NoError(t, err)
	assert.True(t, info.Mode()&os.ModeSymlink != 0)
}

func TestRenameAndRemoveAll(t *testing.T) {
	dir := t.TempDir()
	fsys := filesystem.NewOS()

	path := filepath.Join(dir, "a", "b.txt")
	require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, fsys.WriteFile(path, []byte("x"), 0644))

	moved := filepath.Join(dir, "a.bak")
	require.NoError(t, fsys.Rename(filepath.Join(dir, "a"), moved))

	data, err := fsys.ReadFile(filepath.Join(moved, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	entries, err := fsys.ReadDir(moved)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b.txt", entries[0].Name())

	require.NoError(t, fsys.RemoveAll(moved))
	_, err = fsys.Lstat(moved)
	assert.True(t, os.IsNotExist(err))
}

func TestMemFsHasNoSymlinks(t *testing.T) {
	fsys := filesystem.NewAferoFS(afero.NewMemMapFs())

	err := fsys.Symlink("/a", "/b")
	assert.ErrorIs(t, err, afero.ErrNoSymlink)

	_, err = fsys.Readlink("/b")
	assert.ErrorIs(t, err, afero.ErrNoReadlink)
}

func TestAferoAccessor(t *testing.T) {
	mem := afero.NewMemMapFs()
	backing, ok := filesystem.Afero(filesystem.NewAferoFS(mem))
	require.True(t, ok)
	assert.Same(t, mem, backing)
}
