package fsutil_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jvs-project/reportstore/pkg/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWrite_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.json")
	data := []byte(`{"key":"value"}`)

	err := fsutil.AtomicWrite(path, data, 0640)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, content)
}

func TestAtomicWrite_SetsMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.json")
	require.NoError(t, fsutil.AtomicWrite(path, []byte("x"), 0640))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
}

func TestAtomicWrite_OverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	err := fsutil.AtomicWrite(path, []byte("new"), 0640)
	require.NoError(t, err)

	content, _ := os.ReadFile(path)
	assert.Equal(t, "new", string(content))
}

func TestAtomicWrite_NoTmpLeftOnSuccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.json")
	require.NoError(t, fsutil.AtomicWrite(path, []byte("data"), 0640))

	entries, _ := os.ReadDir(dir)
	assert.Len(t, entries, 1, "only the target file should exist")
}

func TestReplaceFile_FaultKeepsOldContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"old":true}`), 0640))

	boom := errors.New("disk full")
	err := fsutil.ReplaceFile(path, 0640, func(w io.Writer) error {
		if _, err := io.WriteString(w, `{"new":`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"old":true}`, string(content))

	entries, _ := os.ReadDir(dir)
	assert.Len(t, entries, 1, "temporary file must be cleaned up")
}

func TestReplaceFile_FaultWithoutExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")

	err := fsutil.ReplaceFile(path, 0640, func(w io.Writer) error {
		return errors.New("interrupted")
	})
	require.Error(t, err)
	assert.NoFileExists(t, path)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestReplaceFile_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "report.json")
	err := fsutil.ReplaceFile(path, 0640, func(w io.Writer) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestEnsureDir_CreatesWithMode(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "a", "b")

	created, err := fsutil.EnsureDir(dir, 0750)
	require.NoError(t, err)
	assert.True(t, created)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0750), info.Mode().Perm())
}

func TestEnsureDir_ExistingUntouched(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0755))
	other := filepath.Join(dir, "unrelated.txt")
	require.NoError(t, os.WriteFile(other, []byte("keep"), 0600))

	created, err := fsutil.EnsureDir(dir, 0750)
	require.NoError(t, err)
	assert.False(t, created)

	info, _ := os.Stat(dir)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	finfo, _ := os.Stat(other)
	assert.Equal(t, os.FileMode(0600), finfo.Mode().Perm())
}

func TestChmodTree(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0700))
	file := filepath.Join(sub, "f")
	require.NoError(t, os.WriteFile(file, nil, 0600))

	require.NoError(t, fsutil.ChmodTree(root, 0750))

	for _, p := range []string{root, sub, file} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0750), info.Mode().Perm(), p)
	}
}

func TestFsyncDir(t *testing.T) {
	dir := t.TempDir()
	err := fsutil.FsyncDir(dir)
	assert.NoError(t, err)
}
