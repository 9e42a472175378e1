package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLiteStore(t *testing.T) *SQLiteStore {
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_CRUD(t *testing.T) {
	s := setupSQLiteStore(t)

	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("device-id", "d1"))
	require.NoError(t, s.Set("device-id", "d2"), "set should upsert")

	v, ok, err := s.Get("device-id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "d2", v)

	require.NoError(t, s.Delete("device-id"))
	require.NoError(t, s.Delete("device-id"))
	_, ok, _ = s.Get("device-id")
	assert.False(t, ok)
}

func TestSQLiteStore_KeysPrefix(t *testing.T) {
	s := setupSQLiteStore(t)

	for _, k := range []string{"backup-u1-300", "backup-u1-100", "backup-U1-200", "backup-u10-1", "sync-state-u1", "backup_u1_x"} {
		require.NoError(t, s.Set(k, "{}"))
	}

	keys, err := s.Keys("backup-u1-")
	require.NoError(t, err)
	assert.Equal(t, []string{"backup-u1-100", "backup-u1-300"}, keys, "prefix match must be case-sensitive and treat _ literally")

	keys, err = s.Keys("backup_")
	require.NoError(t, err)
	assert.Equal(t, []string{"backup_u1_x"}, keys)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("creator-hub-global", `{"users":[]}`))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get("creator-hub-global")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"users":[]}`, v)
}
