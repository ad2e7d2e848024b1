package sqlite

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/kirinyoku/cinebook/internal/repository"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

func translateDBErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}

	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY,
			sqlite3lib.SQLITE_CONSTRAINT_UNIQUE,
			sqlite3lib.SQLITE_BUSY,
			sqlite3lib.SQLITE_LOCKED:
			return repository.ErrConflict
		case sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY:
			return repository.ErrNotFound
		}
	}

	if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
		return repository.ErrConflict
	}

	return err
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func int64Args(ids []int64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
