package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type Config struct {
	Path string
}

// New opens the SQLite database at cfg.Path and applies the embedded
// migrations found at the root of migrations.
//
// Writers are serialised: the pool holds a single connection and every
// transaction starts with BEGIN IMMEDIATE.
func New(ctx context.Context, cfg Config, migrations fs.FS) (*sql.DB, error) {
	const op = "sqlite.New"

	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("%s: storage path is required", op)
	}

	dsn := "file:" + filepath.Clean(cfg.Path) +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_txlock=immediate"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(0)

	ctxPing, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctxPing); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if migrations != nil {
		if err := Migrate(ctx, db, migrations); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s:%w", op, err)
		}
	}

	return db, nil
}
