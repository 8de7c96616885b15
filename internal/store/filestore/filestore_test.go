package filestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/muurk/devreg/internal/registry"
)

func loadAll(t *testing.T, s *Store) [][2]string {
	t.Helper()
	var got [][2]string
	require.NoError(t, s.Load(func(name, value string) {
		got = append(got, [2]string{name, value})
	}))
	return got
}

func TestMissingFileLoadsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "none.conf"))
	require.Empty(t, loadAll(t, s))
}

func TestSaveReplacesLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "devreg.conf")
	s := New(path)

	require.NoError(t, s.Save("app/a", "1"))
	require.NoError(t, s.Save("app/b", "x=y"))
	require.NoError(t, s.Save("app/a", "2"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "app/a=2\napp/b=x=y\n", string(data))
	require.Equal(t, [][2]string{{"app/a", "2"}, {"app/b", "x=y"}}, loadAll(t, s))
}

func TestBadLinesSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devreg.conf")
	content := "app/a=1\nno separator\n=orphan\n\napp/b=\r\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	require.Equal(t, [][2]string{{"app/a", "1"}, {"app/b", ""}}, loadAll(t, New(path)))
}

func TestOverlongLineSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devreg.conf")
	content := "app/a=1\n" + strings.Repeat("z", 70*1024) + "\napp/b=2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s := New(path)
	require.Equal(t, [][2]string{{"app/a", "1"}, {"app/b", "2"}}, loadAll(t, s))

	// the damaged line is dropped on the next write
	require.NoError(t, s.Save("app/c", "3"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "app/a=1\napp/b=2\napp/c=3\n", string(data))
}

func TestSaveValidation(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "devreg.conf"))

	require.True(t, registry.IsInvalidFormat(s.Save("", "1")))
	require.True(t, registry.IsInvalidFormat(s.Save("a=b", "1")))
	require.True(t, registry.IsInvalidFormat(s.Save("app/a", "1\n2")))
}

func TestBatchWritesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devreg.conf")
	s := New(path)

	require.NoError(t, s.SaveStart())
	require.NoError(t, s.Save("app/a", "1"))
	require.NoError(t, s.Save("app/b", "2"))

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "file should not exist before SaveEnd")
	require.Equal(t, [][2]string{{"app/a", "1"}, {"app/b", "2"}}, loadAll(t, s))

	require.NoError(t, s.SaveEnd())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "app/a=1\napp/b=2\n", string(data))
}

func TestNoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "devreg.conf"))
	require.NoError(t, s.Save("app/a", "1"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devreg.conf")
	s := New(path)
	require.NoError(t, s.Save("app/a", "1"))
	require.NoError(t, s.Format())
	require.Empty(t, loadAll(t, s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Empty(t, data)
}
