package testutil

import (
	"testing"

	"notes-service/database"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// OpenInMemoryDB opens a named shared-cache in-memory SQLite database and applies migrations.
// The database is closed on test cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sqlx.DB {
	t.Helper()
	d, err := sqlx.Connect("sqlite3", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	if err := database.Migrate(d); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return d
}
