package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/shopspring/decimal"
)

type ShowtimeRepo struct {
	db DB
}

func (r *ShowtimeRepo) GetShowtime(ctx context.Context, id int64) (*domain.Showtime, error) {
	const op = "sqlite.ShowtimeRepo.GetShowtime"

	var (
		s        domain.Showtime
		startsAt int64
		price    string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT s.id, s.movie_id, s.theater_id, m.title, t.name, s.starts_at, s.price
		 FROM showtimes s
		 JOIN movies m ON m.id = s.movie_id
		 JOIN theaters t ON t.id = s.theater_id
		 WHERE s.id = ?`,
		id,
	).Scan(&s.ID, &s.MovieID, &s.TheaterID, &s.MovieTitle, &s.TheaterName, &startsAt, &price)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	s.StartsAt = time.UnixMilli(startsAt).UTC()
	if s.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("%s: parse price: %w", op, err)
	}

	return &s, nil
}
