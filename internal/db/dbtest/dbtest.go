// Package dbtest opens migrated in-memory databases for package tests.
package dbtest

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/ttahub/ttahub/internal/db"
)

// New returns an in-memory SQLite database with every migration applied.
// The pool is pinned to one connection so the whole test sees one database.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)

	_, err = database.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	t.Cleanup(func() {
		_ = database.Close()
	})
	return database
}
