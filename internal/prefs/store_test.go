package prefs

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_UsesWAL(t *testing.T) {
	s := openTestStore(t)

	var mode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestStore_GetSet(t *testing.T) {
	p := openTestStore(t).Profile("local")

	_, err := p.Get(KeyActiveCollection)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, p.Set(KeyActiveCollection, "User"))
	require.NoError(t, p.Set(KeyActiveCollection, "BlogPost"))

	v, err := p.Get(KeyActiveCollection)
	require.NoError(t, err)
	assert.Equal(t, "BlogPost", v)
}

func TestStore_ProfilesAreIsolated(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Profile("a").Set(KeyColorTheme, "light"))

	_, err := s.Profile("b").Get(KeyColorTheme)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Profile("local").Set(KeyColorTheme, "light"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.Profile("local").Get(KeyColorTheme)
	require.NoError(t, err)
	assert.Equal(t, "light", v)
}

func TestStore_Activity(t *testing.T) {
	p := openTestStore(t).Profile("local")

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	first := NewEntry(ActionDeleteDocument, "User", "a1", nil)
	first.ExecutedAt = base
	second := NewEntry(ActionDropCollection, "BlogPost", "", errors.New("boom"))
	second.ExecutedAt = base.Add(time.Minute)

	require.NoError(t, p.Record(first))
	require.NoError(t, p.Record(second))
	assert.NotZero(t, first.ID)

	entries, err := p.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, ActionDropCollection, entries[0].Action)
	assert.Equal(t, StatusError, entries[0].Status)
	assert.Equal(t, "boom", entries[0].ErrorMessage)
	assert.Equal(t, "local", entries[0].Profile)

	assert.Equal(t, "a1", entries[1].Target)
	assert.Equal(t, StatusSuccess, entries[1].Status)
	assert.True(t, base.Equal(entries[1].ExecutedAt))

	limited, err := p.Recent(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestMemory(t *testing.T) {
	m := NewMemory()

	_, err := m.Get(KeyColorTheme)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, m.Set(KeyColorTheme, "dark"))
	v, _ := m.Get(KeyColorTheme)
	assert.Equal(t, "dark", v)

	require.NoError(t, m.Record(NewEntry(ActionImport, "User", "u.json", nil)))
	require.NoError(t, m.Record(NewEntry(ActionExport, "User", "User.json", nil)))
	entries, err := m.Recent(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionExport, entries[0].Action)
}

func TestEntry_TargetPreview(t *testing.T) {
	e := Entry{Target: "abcdefghij"}
	assert.Equal(t, "abcd...", e.TargetPreview(7))
	assert.Equal(t, "abcdefghij", e.TargetPreview(20))
}
