package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"
)

const migrationTable = "schema_migrations"

// Migrate applies every *.sql file at the root of migrations that has not
// been recorded in schema_migrations yet, in lexical order. Each file runs in
// its own transaction together with its bookkeeping row.
func Migrate(ctx context.Context, db *sql.DB, migrations fs.FS) error {
	const op = "sqlite.Migrate"

	entries, err := fs.ReadDir(migrations, ".")
	if err != nil {
		return fmt.Errorf("%s: read migrations: %w", op, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if _, err := db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS `+migrationTable+` (
			name TEXT PRIMARY KEY,
			applied_at INTEGER NOT NULL
		)`,
	); err != nil {
		return fmt.Errorf("%s: ensure migration table: %w", op, err)
	}

	for _, name := range files {
		applied, err := isApplied(ctx, db, name)
		if err != nil {
			return fmt.Errorf("%s: check %s: %w", op, name, err)
		}
		if applied {
			continue
		}

		content, err := fs.ReadFile(migrations, name)
		if err != nil {
			return fmt.Errorf("%s: read %s: %w", op, name, err)
		}

		up := UpSection(string(content))
		if strings.TrimSpace(up) == "" {
			continue
		}

		if err := applyOne(ctx, db, name, up); err != nil {
			return fmt.Errorf("%s: %s: %w", op, name, err)
		}
	}

	return nil
}

// UpSection returns the statements between "-- +migrate Up" and
// "-- +migrate Down". Files without markers are returned unchanged.
func UpSection(content string) string {
	const up, down = "-- +migrate Up", "-- +migrate Down"

	start := strings.Index(content, up)
	if start == -1 {
		return content
	}
	start += len(up)

	end := strings.Index(content[start:], down)
	if end == -1 {
		return content[start:]
	}

	return content[start : start+end]
}

func applyOne(ctx context.Context, db *sql.DB, name, stmts string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, stmts); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO `+migrationTable+` (name, applied_at) VALUES (?, ?)`,
		name, time.Now().UTC().UnixMilli(),
	); err != nil {
		return err
	}

	return tx.Commit()
}

func isApplied(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx,
		`SELECT 1 FROM `+migrationTable+` WHERE name = ?`, name,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}
