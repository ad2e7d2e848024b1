package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// advisory lock key guarding concurrent migrators
const migrateLockID = 7_311_202_601

// Migrate applies the *.sql files at the root of migrations that are not
// yet listed in schema_migrations. Only the "-- +migrate Up" section of each
// file is executed.
func Migrate(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS) error {
	const op = "postgres.Migrate"

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

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, migrateLockID); err != nil {
		return fmt.Errorf("%s: lock: %w", op, err)
	}
	defer conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, migrateLockID)

	if _, err := conn.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	); err != nil {
		return fmt.Errorf("%s: ensure migration table: %w", op, err)
	}

	for _, name := range files {
		var one int
		err := conn.QueryRow(ctx, `SELECT 1 FROM schema_migrations WHERE name = $1`, name).Scan(&one)
		if err == nil {
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s: check %s: %w", op, name, err)
		}

		content, err := fs.ReadFile(migrations, name)
		if err != nil {
			return fmt.Errorf("%s: read %s: %w", op, name, err)
		}

		up := upSection(string(content))
		if strings.TrimSpace(up) == "" {
			continue
		}

		err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, up); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name)
			return err
		})
		if err != nil {
			return fmt.Errorf("%s: apply %s: %w", op, name, err)
		}
	}

	return nil
}

func upSection(content string) string {
	const up, down = "-- +migrate Up", "-- +migrate Down"

	start := strings.Index(content, up)
	if start == -1 {
		return content
	}
	start += len(up)

	if end := strings.Index(content[start:], down); end != -1 {
		return content[start : start+end]
	}

	return content[start:]
}
