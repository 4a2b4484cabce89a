// Package dbtest opens migrated throwaway databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/templui/passreset/internal/db"
)

// New returns a migrated SQLite database in a temp directory, closed on cleanup.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := db.Init("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close(conn)
	})

	require.NoError(t, db.RunMigrations(conn.DB, "sqlite"))
	return conn
}
