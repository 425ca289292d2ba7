package datastore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")

	ds, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { ds.Close() })

	_, exists := ds.Get("anything")
	assert.False(t, exists)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data.json")

	ds, err := New(path)
	require.NoError(t, err)

	ds.Add("score", 42)
	ds.Add("name", "u1")
	require.NoError(t, ds.SaveToFile())
	require.NoError(t, ds.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	// JSON numbers come back as float64.
	v, exists := reopened.Get("score")
	require.True(t, exists)
	assert.Equal(t, float64(42), v)

	v, exists = reopened.Get("name")
	require.True(t, exists)
	assert.Equal(t, "u1", v)
}

func TestCloseFlushesPendingWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")

	ds, err := New(path)
	require.NoError(t, err)
	ds.Add("pending", "value")
	require.NoError(t, ds.Close())
	require.NoError(t, ds.Close()) // idempotent

	reopened, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	v, exists := reopened.Get("pending")
	require.True(t, exists)
	assert.Equal(t, "value", v)
}

func TestDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")

	ds, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { ds.Close() })

	ds.Add("k", 1)
	ds.Delete("k")
	_, exists := ds.Get("k")
	assert.False(t, exists)
}

func TestCorruptFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := New(path)
	assert.Error(t, err)
}

func TestEmptyPathRejected(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
