package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/pricing"
	"github.com/kirinyoku/cinebook/internal/repository"
	redisrepo "github.com/kirinyoku/cinebook/internal/repository/redis"
)

type Config struct {
	ShowtimeTTL     time.Duration
	AvailabilityTTL time.Duration
}

type Service struct {
	store repository.Store
	cache *redisrepo.Cache
	cfg   Config
}

func New(store repository.Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.ShowtimeTTL <= 0 {
		cfg.ShowtimeTTL = 10 * time.Minute
	}

	if cfg.AvailabilityTTL <= 0 {
		cfg.AvailabilityTTL = 15 * time.Second
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
	}
}

// Showtime retrieves a showtime by its ID. Showtimes never change once
// created, so the cached copy is served for the whole TTL.
//
// Parameters:
//   - ctx: request-scoped context.
//   - id: ID of the showtime.
//
// Returns:
//   - *domain.Showtime: the showtime with movie title and theater name.
//   - error: query.ErrShowtimeNotFound if the showtime does not exist.
func (s *Service) Showtime(ctx context.Context, id int64) (*domain.Showtime, error) {
	const op = "service.query.Showtime"

	sh, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyShowtime(id),
		s.cfg.ShowtimeTTL,
		func(ctx context.Context) (domain.Showtime, error) {
			sh, err := s.store.Showtimes().GetShowtime(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return domain.Showtime{}, ErrShowtimeNotFound
				}

				return domain.Showtime{}, err
			}

			return *sh, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &sh, nil
}

// Availability returns the seat counts of a showtime by status. The cached
// counts are dropped after every committed booking.
//
// Parameters:
//   - ctx: request-scoped context.
//   - showtimeID: ID of the showtime.
//
// Returns:
//   - *domain.SeatCounts: available, held, booked and total seats.
//   - error: query.ErrShowtimeNotFound if the showtime does not exist.
func (s *Service) Availability(ctx context.Context, showtimeID int64) (*domain.SeatCounts, error) {
	const op = "service.query.Availability"

	if _, err := s.Showtime(ctx, showtimeID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	counts, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyShowtimeAvailability(showtimeID),
		s.cfg.AvailabilityTTL,
		func(ctx context.Context) (domain.SeatCounts, error) {
			sc, err := s.store.Seats().CountsByStatus(ctx, showtimeID)
			if err != nil {
				return domain.SeatCounts{}, err
			}

			return *sc, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &counts, nil
}

// BookingView assembles the confirmation view of a booking owned by userID.
// It reads straight from storage.
//
// Parameters:
//   - ctx: request-scoped context.
//   - userID: the signed-in user.
//   - bookingID: ID of the booking.
//
// Returns:
//   - *domain.BookingView: booking, showtime, seats in seat order, display
//     total and short code.
//   - error: query.ErrBookingNotFound if the booking does not exist or belongs
//     to another user.
func (s *Service) BookingView(ctx context.Context, userID string, bookingID uuid.UUID) (*domain.BookingView, error) {
	const op = "service.query.BookingView"

	b, err := s.store.Bookings().GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if b.UserID != userID {
		return nil, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
	}

	view, err := s.view(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return view, nil
}

// UserBookings returns the booking history of userID, newest first.
func (s *Service) UserBookings(ctx context.Context, userID string) ([]domain.BookingView, error) {
	const op = "service.query.UserBookings"

	bookings, err := s.store.Bookings().ListUserBookings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]domain.BookingView, 0, len(bookings))
	for i := range bookings {
		v, err := s.view(ctx, &bookings[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *v)
	}

	return out, nil
}

func (s *Service) view(ctx context.Context, b *domain.Booking) (*domain.BookingView, error) {
	sh, err := s.store.Showtimes().GetShowtime(ctx, b.ShowtimeID)
	if err != nil {
		return nil, err
	}

	seats, err := s.store.Seats().SeatsByIDs(ctx, b.ShowtimeID, b.SeatIDs)
	if err != nil {
		return nil, err
	}
	domain.SortSeats(seats)

	return &domain.BookingView{
		Booking:      *b,
		Code:         b.Code(),
		Showtime:     *sh,
		Seats:        seats,
		TotalDisplay: pricing.Format(b.Total),
	}, nil
}
