package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestMigrateAppliesOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	migrations := fstest.MapFS{
		"0001_init.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE widgets (id INTEGER PRIMARY KEY);\n-- +migrate Down\nDROP TABLE widgets;\n")},
		"notes.txt":     {Data: []byte("ignored")},
	}

	db, err := New(ctx, Config{Path: filepath.Join(t.TempDir(), "test.db")}, migrations)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(ctx, db, migrations); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 1 {
		t.Fatalf("applied migrations = %d, want 1", count)
	}

	if _, err := db.ExecContext(ctx, `INSERT INTO widgets (id) VALUES (1)`); err != nil {
		t.Fatalf("insert widget: %v", err)
	}
}

func TestUpSection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "no markers", content: "SELECT 1;", want: "SELECT 1;"},
		{name: "up only", content: "-- +migrate Up\nSELECT 1;", want: "\nSELECT 1;"},
		{name: "up and down", content: "-- +migrate Up\nSELECT 1;\n-- +migrate Down\nSELECT 2;", want: "\nSELECT 1;\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := UpSection(tt.content); got != tt.want {
				t.Fatalf("UpSection = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), Config{Path: "  "}, nil); err == nil {
		t.Fatal("expected error for empty path")
	}
}
