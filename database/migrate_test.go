package database

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func TestMigrate_IdempotentAndCreatesSchema(t *testing.T) {
	d, err := sqlx.Connect("sqlite3", "file:migrate_test?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	require.NoError(t, Migrate(d))
	require.NoError(t, Migrate(d), "second run must be a no-op")

	for _, table := range []string{"users", "notes", "note_shares", "notes_fts", "sessions"} {
		var n int
		require.NoError(t, d.Get(&n, `SELECT COUNT(*) FROM sqlite_master WHERE name = ?`, table))
		require.Equal(t, 1, n, "table %s", table)
	}
}

func TestWithPragmas(t *testing.T) {
	require.Equal(t, "a.db?_busy_timeout=5000", withPragmas("a.db"))
	require.Equal(t, "file:a.db?mode=rwc&_busy_timeout=5000", withPragmas("file:a.db?mode=rwc"))
	require.Equal(t, "a.db?_busy_timeout=1", withPragmas("a.db?_busy_timeout=1"))
}
