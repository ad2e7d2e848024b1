package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/repository"
)

type SeatRepo struct {
	db DB
}

func (r *SeatRepo) ListSeats(ctx context.Context, showtimeID int64) ([]domain.Seat, error) {
	const op = "sqlite.SeatRepo.ListSeats"

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, showtime_id, row_name, seat_number, status
		 FROM seats
		 WHERE showtime_id = ?`,
		showtimeID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	seats, err := scanSeats(rows)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	domain.SortSeats(seats)

	return seats, nil
}

func (r *SeatRepo) SeatsByIDs(ctx context.Context, showtimeID int64, ids []int64) ([]domain.Seat, error) {
	const op = "sqlite.SeatRepo.SeatsByIDs"

	if len(ids) == 0 {
		return nil, nil
	}

	args := append([]any{showtimeID}, int64Args(ids)...)
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, showtime_id, row_name, seat_number, status
		 FROM seats
		 WHERE showtime_id = ? AND id IN (`+placeholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	seats, err := scanSeats(rows)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	domain.SortSeats(seats)

	return seats, nil
}

func (r *SeatRepo) MarkBooked(ctx context.Context, showtimeID int64, ids []int64) error {
	const op = "sqlite.SeatRepo.MarkBooked"

	if len(ids) == 0 {
		return nil
	}

	in := placeholders(len(ids))
	args := append([]any{showtimeID}, int64Args(ids)...)
	args = append(args, showtimeID)
	args = append(args, int64Args(ids)...)
	args = append(args, len(ids))

	// The count guard makes the statement write nothing unless every
	// requested seat is present and free.
	res, err := r.db.ExecContext(ctx,
		`UPDATE seats
		 SET status = 'booked'
		 WHERE showtime_id = ?
		   AND id IN (`+in+`)
		   AND status <> 'booked'
		   AND (SELECT COUNT(*) FROM seats
		        WHERE showtime_id = ?
		          AND id IN (`+in+`)
		          AND status <> 'booked') = ?`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if int(n) != len(ids) {
		return fmt.Errorf("%s:%w", op, repository.ErrConflict)
	}

	return nil
}

func (r *SeatRepo) CountsByStatus(ctx context.Context, showtimeID int64) (*domain.SeatCounts, error) {
	const op = "sqlite.SeatRepo.CountsByStatus"

	var sc domain.SeatCounts
	err := r.db.QueryRowContext(ctx,
		`SELECT
			COALESCE(SUM(CASE WHEN status = 'available' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'held' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'booked' THEN 1 ELSE 0 END), 0)
		 FROM seats
		 WHERE showtime_id = ?`,
		showtimeID,
	).Scan(&sc.Available, &sc.Held, &sc.Booked)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	sc.Total = sc.Available + sc.Held + sc.Booked

	return &sc, nil
}

func scanSeats(rows *sql.Rows) ([]domain.Seat, error) {
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
