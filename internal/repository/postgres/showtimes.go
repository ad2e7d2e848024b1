package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/shopspring/decimal"
)

type ShowtimeRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *ShowtimeRepo) With(db DB) *ShowtimeRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *ShowtimeRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// GetShowtime retrieves a showtime with its movie title and theater name.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - id: unique identifier of the showtime to retrieve.
//
// Returns:
//   - *domain.Showtime: the showtime when found.
//   - error: repository.ErrNotFound if the showtime is not found.
func (r *ShowtimeRepo) GetShowtime(ctx context.Context, id int64) (*domain.Showtime, error) {
	const op = "postgres.ShowtimeRepo.GetShowtime"

	db := r.handle()

	var (
		s     domain.Showtime
		price string
	)
	err := db.QueryRow(ctx,
		`SELECT s.id, s.movie_id, s.theater_id, m.title, t.name, s.starts_at, s.price::text
		 FROM showtimes s
		 JOIN movies m ON m.id = s.movie_id
		 JOIN theaters t ON t.id = s.theater_id
		 WHERE s.id = $1`,
		id,
	).Scan(&s.ID, &s.MovieID, &s.TheaterID, &s.MovieTitle, &s.TheaterName, &s.StartsAt, &price)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if s.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("%s: parse price: %w", op, err)
	}
	s.StartsAt = s.StartsAt.UTC()

	return &s, nil
}
