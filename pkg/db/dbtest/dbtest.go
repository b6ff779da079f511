// Package dbtest opens migrated sqlite databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mvc/pkg/db"
)

// Open returns a migrated sqlite database in a temp dir, closed on cleanup.
// A file is used instead of :memory: because every gateway takes its own
// connection and in-memory databases are per connection.
func Open(t testing.TB) *db.Database {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	d, err := db.Open(context.Background(), db.DefaultName, db.Config{
		Driver:      db.DriverSQLite,
		DSN:         dsn,
		AutoMigrate: true,
	}, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = d.Close() })
	return d
}

// Registry returns a registry whose default database is a fresh migrated sqlite file.
func Registry(t testing.TB, opts ...db.RegistryOption) (*db.Registry, *db.Database) {
	t.Helper()

	d := Open(t)
	return db.NewRegistry(map[string]*db.Database{db.DefaultName: d}, opts...), d
}
