package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/cinebook/internal/domain"
)

type AdminRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *AdminRepo) With(db DB) *AdminRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *AdminRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *AdminRepo) CreateMovie(ctx context.Context, m domain.Movie) (int64, error) {
	const op = "postgres.AdminRepo.CreateMovie"

	var id int64
	if err := r.handle().QueryRow(ctx,
		`INSERT INTO movies (title, duration_min, language)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		m.Title, m.DurationMin, m.Language,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return id, nil
}

func (r *AdminRepo) CreateTheater(ctx context.Context, t domain.Theater) (int64, error) {
	const op = "postgres.AdminRepo.CreateTheater"

	var id int64
	if err := r.handle().QueryRow(ctx,
		`INSERT INTO theaters (name, city)
		 VALUES ($1, $2)
		 RETURNING id`,
		t.Name, t.City,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return id, nil
}

func (r *AdminRepo) CreateShowtime(ctx context.Context, s domain.Showtime) (int64, error) {
	const op = "postgres.AdminRepo.CreateShowtime"

	var id int64
	if err := r.handle().QueryRow(ctx,
		`INSERT INTO showtimes (movie_id, theater_id, starts_at, price)
		 VALUES ($1, $2, $3, $4::numeric)
		 RETURNING id`,
		s.MovieID, s.TheaterID, s.StartsAt, s.Price.String(),
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return id, nil
}

func (r *AdminRepo) BatchCreateSeats(ctx context.Context, showtimeID int64, seats []domain.Seat) error {
	const op = "postgres.AdminRepo.BatchCreateSeats"

	batch := &pgx.Batch{}
	for _, s := range seats {
		status := s.Status
		if status == "" {
			status = domain.SeatAvailable
		}
		batch.Queue(
			`INSERT INTO seats (showtime_id, row_name, seat_number, status)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (showtime_id, row_name, seat_number) DO NOTHING`,
			showtimeID, s.Row, s.Number, string(status),
		)
	}
	if err := r.handle().SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}
