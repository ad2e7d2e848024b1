package reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/repository"
)

type Config struct {
	MaxTickets int
}

type Service struct {
	store repository.Store
	rules Rules
}

func New(store repository.Store, cfg Config) *Service {
	if cfg.MaxTickets <= 0 {
		cfg.MaxTickets = DefaultMaxTickets
	}

	return &Service{
		store: store,
		rules: Rules{MaxTickets: cfg.MaxTickets},
	}
}

// MaxTickets is the configured upper bound for one booking.
func (s *Service) MaxTickets() int {
	return s.rules.MaxTickets
}

// SeatMap returns the live seat grid of a showtime.
//
// Parameters:
//   - ctx: request-scoped context.
//   - showtimeID: ID of the showtime.
//
// Returns:
//   - []domain.Seat: seats ordered by row, then numeric seat number.
//   - error: reservation.ErrShowtimeNotFound if the showtime does not exist.
func (s *Service) SeatMap(ctx context.Context, showtimeID int64) ([]domain.Seat, error) {
	const op = "service.reservation.SeatMap"

	if err := s.ensureShowtime(ctx, showtimeID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	seats, err := s.store.Seats().ListSeats(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return seats, nil
}

// Prepare validates a seat selection against the live seat grid.
//
// Parameters:
//   - ctx: request-scoped context.
//   - showtimeID: ID of the showtime.
//   - seatIDs: the user's candidate seats, in selection order.
//   - ticketCount: the number of tickets the user asked for.
//
// Returns:
//   - ValidatedReservation: the accepted selection.
//   - error: *reservation.ValidationError (matching ErrValidation) if a rule
//     fails, reservation.ErrShowtimeNotFound if the showtime does not exist.
func (s *Service) Prepare(
	ctx context.Context,
	showtimeID int64,
	seatIDs []int64,
	ticketCount int,
) (ValidatedReservation, error) {
	const op = "service.reservation.Prepare"

	if err := s.ensureShowtime(ctx, showtimeID); err != nil {
		return ValidatedReservation{}, fmt.Errorf("%s: %w", op, err)
	}

	seats, err := s.store.Seats().ListSeats(ctx, showtimeID)
	if err != nil {
		return ValidatedReservation{}, fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.rules.Validate(showtimeID, seatIDs, ticketCount, seats)
	if err != nil {
		return ValidatedReservation{}, fmt.Errorf("%s: %w", op, err)
	}

	return res, nil
}

func (s *Service) ensureShowtime(ctx context.Context, showtimeID int64) error {
	if _, err := s.store.Showtimes().GetShowtime(ctx, showtimeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrShowtimeNotFound
		}
		return err
	}
	return nil
}
