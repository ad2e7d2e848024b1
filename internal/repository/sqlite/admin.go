package sqlite

import (
	"context"
	"fmt"

	"github.com/kirinyoku/cinebook/internal/domain"
)

type AdminRepo struct {
	db DB
}

func (r *AdminRepo) CreateMovie(ctx context.Context, m domain.Movie) (int64, error) {
	const op = "sqlite.AdminRepo.CreateMovie"

	return r.insertReturningID(ctx, op,
		`INSERT INTO movies (title, duration_min, language) VALUES (?, ?, ?)`,
		m.Title, m.DurationMin, m.Language,
	)
}

func (r *AdminRepo) CreateTheater(ctx context.Context, t domain.Theater) (int64, error) {
	const op = "sqlite.AdminRepo.CreateTheater"

	return r.insertReturningID(ctx, op,
		`INSERT INTO theaters (name, city) VALUES (?, ?)`,
		t.Name, t.City,
	)
}

func (r *AdminRepo) CreateShowtime(ctx context.Context, s domain.Showtime) (int64, error) {
	const op = "sqlite.AdminRepo.CreateShowtime"

	return r.insertReturningID(ctx, op,
		`INSERT INTO showtimes (movie_id, theater_id, starts_at, price) VALUES (?, ?, ?, ?)`,
		s.MovieID, s.TheaterID, s.StartsAt.UTC().UnixMilli(), s.Price.String(),
	)
}

func (r *AdminRepo) BatchCreateSeats(ctx context.Context, showtimeID int64, seats []domain.Seat) error {
	const op = "sqlite.AdminRepo.BatchCreateSeats"

	for _, s := range seats {
		status := s.Status
		if status == "" {
			status = domain.SeatAvailable
		}

		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO seats (showtime_id, row_name, seat_number, status)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT (showtime_id, row_name, seat_number) DO NOTHING`,
			showtimeID, s.Row, s.Number, string(status),
		); err != nil {
			return fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
	}

	return nil
}

func (r *AdminRepo) insertReturningID(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	return id, nil
}
