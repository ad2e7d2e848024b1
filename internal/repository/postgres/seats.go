package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/repository"
)

type SeatRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *SeatRepo) With(db DB) *SeatRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *SeatRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// ListSeats lists every seat of a showtime in seat-map order.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - showtimeID: unique identifier of the showtime.
//
// Returns:
//   - []domain.Seat: seats ordered by row, then numeric seat number.
//   - error: any storage error.
func (r *SeatRepo) ListSeats(ctx context.Context, showtimeID int64) ([]domain.Seat, error) {
	const op = "postgres.SeatRepo.ListSeats"

	rows, err := r.handle().Query(ctx,
		`SELECT id, showtime_id, row_name, seat_number, status
		 FROM seats
		 WHERE showtime_id = $1`,
		showtimeID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	seats, err := collectSeats(rows)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	domain.SortSeats(seats)

	return seats, nil
}

// SeatsByIDs re-reads the current status of the given seats.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - showtimeID: showtime the seats must belong to.
//   - ids: seat identifiers; ids of other showtimes are not returned.
//
// Returns:
//   - []domain.Seat: the matching seats in seat-map order.
//   - error: any storage error.
func (r *SeatRepo) SeatsByIDs(ctx context.Context, showtimeID int64, ids []int64) ([]domain.Seat, error) {
	const op = "postgres.SeatRepo.SeatsByIDs"

	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.handle().Query(ctx,
		`SELECT id, showtime_id, row_name, seat_number, status
		 FROM seats
		 WHERE showtime_id = $1 AND id = ANY($2)`,
		showtimeID, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	seats, err := collectSeats(rows)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	domain.SortSeats(seats)

	return seats, nil
}

// MarkBooked books every seat in ids with one conditional update. Either
// all seats are booked or none is.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - showtimeID: showtime the seats belong to.
//   - ids: seats to book.
//
// Returns:
//   - error: repository.ErrConflict if any seat was already booked or is
//     missing.
func (r *SeatRepo) MarkBooked(ctx context.Context, showtimeID int64, ids []int64) error {
	const op = "postgres.SeatRepo.MarkBooked"

	if len(ids) == 0 {
		return nil
	}

	if r.db != nil {
		return r.markBooked(ctx, r.db, showtimeID, ids)
	}

	// pool-bound: a racing writer can still shrink the update under READ
	// COMMITTED, so the partial write must be rolled back here
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return r.markBooked(ctx, tx, showtimeID, ids)
	})
	if err != nil && !errors.Is(err, repository.ErrConflict) {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return err
}

func (r *SeatRepo) markBooked(ctx context.Context, db DB, showtimeID int64, ids []int64) error {
	const op = "postgres.SeatRepo.MarkBooked"

	tag, err := db.Exec(ctx,
		`UPDATE seats
		 SET status = 'booked'
		 WHERE showtime_id = $1
		   AND id = ANY($2)
		   AND status <> 'booked'
		   AND (SELECT count(*) FROM seats
		        WHERE showtime_id = $1
		          AND id = ANY($2)
		          AND status <> 'booked') = cardinality($2::bigint[])`,
		showtimeID, ids,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if int(tag.RowsAffected()) != len(ids) {
		return fmt.Errorf("%s:%w", op, repository.ErrConflict)
	}

	return nil
}

// CountsByStatus counts seats by status for a showtime.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - showtimeID: unique identifier of the showtime.
//
// Returns:
//   - *domain.SeatCounts: the counts; all zero for an unknown showtime.
//   - error: any storage error.
func (r *SeatRepo) CountsByStatus(ctx context.Context, showtimeID int64) (*domain.SeatCounts, error) {
	const op = "postgres.SeatRepo.CountsByStatus"

	var sc domain.SeatCounts
	err := r.handle().QueryRow(ctx,
		`SELECT
			COALESCE(SUM(CASE WHEN status = 'available' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'held' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'booked' THEN 1 ELSE 0 END), 0)
		 FROM seats
		 WHERE showtime_id = $1`,
		showtimeID,
	).Scan(&sc.Available, &sc.Held, &sc.Booked)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	sc.Total = sc.Available + sc.Held + sc.Booked

	return &sc, nil
}

func collectSeats(rows pgx.Rows) ([]domain.Seat, error) {
	defer rows.Close()

	var out []domain.Seat
	for rows.Next() {
		var (
			s      domain.Seat
			status string
		)
		if err := rows.Scan(&s.ID, &s.ShowtimeID, &s.Row, &s.Number, &status); err != nil {
			return nil, err
		}
		s.Status = domain.SeatStatus(status)
		out = append(out, s)
	}

	return out, rows.Err()
}
