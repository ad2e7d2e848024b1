package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/repository"
	"github.com/kirinyoku/cinebook/internal/uow"
	"github.com/shopspring/decimal"
)

// maxSeatsPerRow bounds a provisioned grid row.
const maxSeatsPerRow = 100

type Service struct {
	store repository.Store
	uow   *uow.UoW
}

func New(store repository.Store) *Service {
	return &Service{
		store: store,
		uow:   uow.NewUoW(store),
	}
}

// CreateMovie creates a movie record and returns its ID.
//
// Parameters:
//   - ctx: request-scoped context.
//   - m: movie with title, duration in minutes and language.
//
// Returns:
//   - int64: the created movie ID on success.
//   - error: admin.ErrInvalidInput if the title is empty or the duration is
//     not positive.
func (s *Service) CreateMovie(ctx context.Context, m domain.Movie) (int64, error) {
	const op = "service.admin.CreateMovie"

	m.Title = strings.TrimSpace(m.Title)
	if m.Title == "" || m.DurationMin <= 0 {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidInput)
	}

	id, err := s.store.Admin().CreateMovie(ctx, m)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// CreateTheater creates a theater record and returns its ID.
//
// Parameters:
//   - ctx: request-scoped context.
//   - t: theater with a unique name and a city.
//
// Returns:
//   - int64: the created theater ID on success.
//   - error: admin.ErrTheaterConflict if a theater with the same name
//     already exists.
func (s *Service) CreateTheater(ctx context.Context, t domain.Theater) (int64, error) {
	const op = "service.admin.CreateTheater"

	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidInput)
	}

	id, err := s.store.Admin().CreateTheater(ctx, t)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return 0, fmt.Errorf("%s: %w", op, ErrTheaterConflict)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// ShowtimeInput describes a showtime and the seat grid to provision for it.
type ShowtimeInput struct {
	MovieID   int64
	TheaterID int64
	StartsAt  time.Time
	Price     decimal.Decimal
	// Rows are row labels, e.g. A..J.
	Rows []string
	// PerRow is the number of seats in every row, numbered from 1.
	PerRow int
}

// CreateShowtime creates a showtime and provisions its seat grid within one
// transactional Unit of Work.
//
// Parameters:
//   - ctx: request-scoped context.
//   - in: showtime attributes and grid shape.
//
// Returns:
//   - int64: the created showtime ID.
//   - error: admin.ErrInvalidInput for a bad grid or price,
//     admin.ErrMovieOrTheater if a reference is missing,
//     admin.ErrShowtimeConflict if the theater is taken at that time.
func (s *Service) CreateShowtime(ctx context.Context, in ShowtimeInput) (int64, error) {
	const op = "service.admin.CreateShowtime"

	seats, err := grid(in.Rows, in.PerRow)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if in.Price.IsNegative() || in.StartsAt.IsZero() {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidInput)
	}

	var showtimeID int64
	err = s.uow.Do(ctx, func(ctx context.Context, tx repository.Repos, _ func(uow.AfterCommit)) error {
		var err error
		showtimeID, err = tx.Admin().CreateShowtime(ctx, domain.Showtime{
			MovieID:   in.MovieID,
			TheaterID: in.TheaterID,
			StartsAt:  in.StartsAt.UTC(),
			Price:     in.Price,
		})
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrNotFound):
				return ErrMovieOrTheater
			case errors.Is(err, repository.ErrConflict):
				return ErrShowtimeConflict
			}
			return err
		}

		return tx.Admin().BatchCreateSeats(ctx, showtimeID, seats)
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return showtimeID, nil
}

func grid(rows []string, perRow int) ([]domain.Seat, error) {
	if len(rows) == 0 || perRow <= 0 || perRow > maxSeatsPerRow {
		return nil, ErrInvalidInput
	}

	seen := make(map[string]struct{}, len(rows))
	seats := make([]domain.Seat, 0, len(rows)*perRow)

	for _, r := range rows {
		r = strings.ToUpper(strings.TrimSpace(r))
		if r == "" {
			return nil, ErrInvalidInput
		}
		if _, dup := seen[r]; dup {
			return nil, ErrInvalidInput
		}
		seen[r] = struct{}{}

		for n := 1; n <= perRow; n++ {
			seats = append(seats, domain.Seat{Row: r, Number: strconv.Itoa(n), Status: domain.SeatAvailable})
		}
	}

	return seats, nil
}
