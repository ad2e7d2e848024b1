package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kirinyoku/cinebook/internal/repository"
)

func TestTranslateDBErr(t *testing.T) {
	t.Parallel()

	other := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: repository.ErrNotFound},
		{name: "unique", err: &pgconn.PgError{Code: "23505"}, want: repository.ErrConflict},
		{name: "foreign key", err: &pgconn.PgError{Code: "23503"}, want: repository.ErrNotFound},
		{name: "deadlock", err: fmt.Errorf("exec: %w", &pgconn.PgError{Code: "40P01"}), want: repository.ErrConflict},
		{name: "serialization", err: &pgconn.PgError{Code: "40001"}, want: repository.ErrConflict},
		{name: "passthrough", err: other, want: other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := translateDBErr(tt.err); !errors.Is(got, tt.want) {
				t.Fatalf("translateDBErr = %v, want %v", got, tt.want)
			}
		})
	}

	if translateDBErr(nil) != nil {
		t.Fatal("translateDBErr(nil) should be nil")
	}
}
