package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/server-imouto/internal/affinity"
)

func newTestStorage(t *testing.T, path string) *Storage {
	t.Helper()
	s, err := New(path)
	require.NoError(t, err)
	return s
}

func TestAffectionDefaultsForUnknownUser(t *testing.T) {
	s := newTestStorage(t, filepath.Join(t.TempDir(), "affection.json"))
	defer s.Close()

	assert.Equal(t, affinity.Default, s.Affection("never-seen"))
	assert.Empty(t, s.AllAffection(), "reading must not create a record")
}

func TestSetAffectionClamps(t *testing.T) {
	s := newTestStorage(t, filepath.Join(t.TempDir(), "affection.json"))
	defer s.Close()

	s.SetAffection("a", -5)
	assert.Equal(t, 0, s.Affection("a"))

	s.SetAffection("a", 150)
	assert.Equal(t, 100, s.Affection("a"))

	s.SetAffection("a", 77)
	assert.Equal(t, 77, s.Affection("a"))
}

func TestAffectionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "affection.json")

	want := map[string]int{"alice": 0, "bob": 50, "carol": 100, "dave": 33}

	s := newTestStorage(t, path)
	for id, score := range want {
		s.SetAffection(id, score)
	}
	require.NoError(t, s.Save())
	require.NoError(t, s.Close())

	reopened := newTestStorage(t, path)
	defer reopened.Close()

	assert.Equal(t, want, reopened.AllAffection())
	for id, score := range want {
		assert.Equal(t, score, reopened.Affection(id))
	}
}

func TestCommandHistory(t *testing.T) {
	s := newTestStorage(t, filepath.Join(t.TempDir(), "affection.json"))
	defer s.Close()

	history, err := s.FetchCommandHistory("g1")
	require.NoError(t, err)
	assert.Empty(t, history)

	for i := 0; i < commandHistoryLimit+5; i++ {
		require.NoError(t, s.AppendCommandToHistory("g1", CommandHistoryRecord{
			UserID:  "u1",
			Command: "ping",
		}))
	}

	history, err = s.FetchCommandHistory("g1")
	require.NoError(t, err)
	assert.Len(t, history, commandHistoryLimit)
}
