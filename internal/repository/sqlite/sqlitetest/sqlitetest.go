// Package sqlitetest opens throwaway SQLite stores for tests.
package sqlitetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kirinyoku/cinebook/internal/repository/repotest"
	sqliterepo "github.com/kirinyoku/cinebook/internal/repository/sqlite"
	"github.com/kirinyoku/cinebook/internal/repository/sqlite/migrations"
	"github.com/kirinyoku/cinebook/internal/sqlite"
)

// Open returns a migrated store in t's temp dir, closed on cleanup.
func Open(t *testing.T) *sqliterepo.Store {
	t.Helper()

	db, err := sqlite.New(context.Background(), sqlite.Config{
		Path: filepath.Join(t.TempDir(), "cinebook.db"),
	}, migrations.FS)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	store := sqliterepo.NewStore(db)
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})

	return store
}

// Showtime is a seeded showtime and its seat ids keyed by label.
type Showtime = repotest.Showtime

// SeedShowtime creates a movie, a theater and one showtime priced at price
// with perRow seats in each of rows.
func SeedShowtime(t *testing.T, store *sqliterepo.Store, price string, rows []string, perRow int) Showtime {
	t.Helper()
	return repotest.SeedShowtime(t, store, price, rows, perRow)
}
