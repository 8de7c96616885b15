package nvstore

import (
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

func TestEmptyMediumLoadsNothing(t *testing.T) {
	s := New(NewMemMedium(256))
	require.Empty(t, loadAll(t, s))

	used, err := s.Used()
	require.NoError(t, err)
	require.Equal(t, 0, used)
}

func TestSaveAndLoadLatestValue(t *testing.T) {
	m := NewMemMedium(256)
	s := New(m)

	require.NoError(t, s.Save("app/a", "1"))
	require.NoError(t, s.Save("app/b", "2"))
	require.NoError(t, s.Save("app/a", "3"))

	require.Equal(t, [][2]string{{"app/a", "3"}, {"app/b", "2"}}, loadAll(t, s))
	require.Equal(t, 3, m.Writes())
	require.Equal(t, 0, m.Erases())
}

func TestSaveSurvivesReopen(t *testing.T) {
	m := NewMemMedium(256)
	require.NoError(t, New(m).Save("lora/str_DEVEUI", "0004A30B001C0530"))

	require.Equal(t, [][2]string{{"lora/str_DEVEUI", "0004A30B001C0530"}}, loadAll(t, New(m)))
}

func TestCompactionWhenLogFills(t *testing.T) {
	rec := len(encodeRecord("app/x", "100"))
	m := NewMemMedium(rec * 3)
	s := New(m)

	for _, v := range []string{"100", "200", "300", "400"} {
		require.NoError(t, s.Save("app/x", v))
	}

	require.Equal(t, [][2]string{{"app/x", "400"}}, loadAll(t, s))
	require.Equal(t, 1, m.Erases())

	used, err := s.Used()
	require.NoError(t, err)
	require.Equal(t, rec, used)
}

func TestCapacityExhaustedLeavesMediumUntouched(t *testing.T) {
	rec := len(encodeRecord("app/a", "1"))
	m := NewMemMedium(rec * 2)
	s := New(m)

	require.NoError(t, s.Save("app/a", "1"))
	require.NoError(t, s.Save("app/b", "2"))

	err := s.Save("app/c", "3")
	require.Error(t, err)
	require.True(t, registry.IsCapacityExhausted(err))
	require.Equal(t, 0, m.Erases())
	require.Equal(t, [][2]string{{"app/a", "1"}, {"app/b", "2"}}, loadAll(t, s))
}

func TestCorruptRecordStopsScan(t *testing.T) {
	m := NewMemMedium(256)
	s := New(m)

	require.NoError(t, s.Save("app/a", "1"))
	require.NoError(t, s.Save("app/b", "2"))

	// flip the last value byte of the second record
	second := len(encodeRecord("app/a", "1"))
	m.Corrupt(second+headerLen+len("app/b"), []byte{'9'})

	require.Equal(t, [][2]string{{"app/a", "1"}}, loadAll(t, s))

	// the damaged tail is not erased, so the next save compacts
	require.NoError(t, s.Save("app/c", "3"))
	require.Equal(t, 1, m.Erases())
	require.Equal(t, [][2]string{{"app/a", "1"}, {"app/c", "3"}}, loadAll(t, s))
}

func TestBadMagicStopsScan(t *testing.T) {
	m := NewMemMedium(64)
	m.Corrupt(0, []byte{0x00})
	require.Empty(t, loadAll(t, New(m)))
}

func TestSaveValidation(t *testing.T) {
	s := New(NewMemMedium(1024))

	err := s.Save("", "1")
	require.True(t, registry.IsInvalidFormat(err))

	err = s.Save("app/a", strings.Repeat("v", registry.MaxValLen+1))
	require.True(t, registry.IsOverflow(err))

	err = s.Save(strings.Repeat("n", registry.MaxNameLen+1), "1")
	require.True(t, registry.IsOverflow(err))
}

func TestFormat(t *testing.T) {
	m := NewMemMedium(128)
	s := New(m)
	require.NoError(t, s.Save("app/a", "1"))
	require.NoError(t, s.Format())
	require.Empty(t, loadAll(t, s))
}

func TestMemMediumRejectsOverwrite(t *testing.T) {
	m := NewMemMedium(8)
	require.NoError(t, m.WriteAt([]byte{1, 2}, 0))
	require.ErrorIs(t, m.WriteAt([]byte{3}, 1), ErrNotErased)
	require.Error(t, m.WriteAt([]byte{1, 2}, 7))

	require.NoError(t, m.Erase())
	require.NoError(t, m.WriteAt([]byte{3}, 1))
}

func TestFileMediumPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nv", "image.bin")

	m, err := OpenFileMedium(path, 512)
	require.NoError(t, err)
	require.Equal(t, 512, m.Size())
	require.NoError(t, New(m).Save("app/data_send_period", "300"))
	require.NoError(t, m.Close())

	m, err = OpenFileMedium(path, 0)
	require.NoError(t, err)
	defer m.Close()
	require.Equal(t, 512, m.Size())
	require.Equal(t, [][2]string{{"app/data_send_period", "300"}}, loadAll(t, New(m)))
}
