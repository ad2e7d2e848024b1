package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/cinebook/internal/repository"
)

type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
	}
}

// RunTx runs fn in a READ COMMITTED transaction. Seat booking relies on
// conditional updates rather than snapshot isolation: a racing UPDATE
// waits for the row lock and re-checks its WHERE clause, so the loser
// sees fewer affected rows.
func (s *Store) RunTx(
	ctx context.Context,
	fn func(ctx context.Context, tx repository.Repos) error,
) error {
	const op = "postgres.Store.RunTx"

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer tx.Rollback(ctx)

	if err := fn(ctx, repos{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: commit: %w", op, translateDBErr(err))
	}

	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Showtimes() repository.ShowtimeRepository { return &ShowtimeRepo{pool: s.pool} }
func (s *Store) Seats() repository.SeatRepository         { return &SeatRepo{pool: s.pool} }
func (s *Store) Bookings() repository.BookingRepository   { return &BookingRepo{pool: s.pool} }
func (s *Store) Admin() repository.AdminRepository        { return &AdminRepo{pool: s.pool} }

type repos struct {
	db DB
}

func (r repos) Showtimes() repository.ShowtimeRepository { return (&ShowtimeRepo{}).With(r.db) }
func (r repos) Seats() repository.SeatRepository         { return (&SeatRepo{}).With(r.db) }
func (r repos) Bookings() repository.BookingRepository   { return (&BookingRepo{}).With(r.db) }
func (r repos) Admin() repository.AdminRepository        { return (&AdminRepo{}).With(r.db) }

var _ repository.Store = (*Store)(nil)
