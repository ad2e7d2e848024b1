// Package sqlite implements the repository contracts on SQLite. It backs
// single-node deployments and the service tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kirinyoku/cinebook/internal/repository"
)

// DB is satisfied by both *sql.DB and *sql.Tx.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// RunTx runs fn in a transaction. The connection is opened with
// _txlock=immediate, so the write lock is taken at BEGIN and concurrent
// commits are serialised.
func (s *Store) RunTx(
	ctx context.Context,
	fn func(ctx context.Context, tx repository.Repos) error,
) error {
	const op = "sqlite.Store.RunTx"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer tx.Rollback()

	if err := fn(ctx, repos{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, translateDBErr(err))
	}

	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Showtimes() repository.ShowtimeRepository { return &ShowtimeRepo{db: s.db} }
func (s *Store) Seats() repository.SeatRepository         { return &SeatRepo{db: s.db} }
func (s *Store) Bookings() repository.BookingRepository   { return &BookingRepo{db: s.db} }
func (s *Store) Admin() repository.AdminRepository        { return &AdminRepo{db: s.db} }

type repos struct {
	db DB
}

func (r repos) Showtimes() repository.ShowtimeRepository { return &ShowtimeRepo{db: r.db} }
func (r repos) Seats() repository.SeatRepository         { return &SeatRepo{db: r.db} }
func (r repos) Bookings() repository.BookingRepository   { return &BookingRepo{db: r.db} }
func (r repos) Admin() repository.AdminRepository        { return &AdminRepo{db: r.db} }

var _ repository.Store = (*Store)(nil)
