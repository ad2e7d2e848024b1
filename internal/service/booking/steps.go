package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/pricing"
	"github.com/kirinyoku/cinebook/internal/repository"
	"github.com/kirinyoku/cinebook/internal/service/reservation"
)

// commitState is threaded through the commit steps.
type commitState struct {
	userID  string
	res     reservation.ValidatedReservation
	seatIDs []int64
	method  domain.PaymentMethod

	seats    []domain.Seat
	showtime *domain.Showtime
	booking  *domain.Booking
}

type step struct {
	name string
	run  func(ctx context.Context, tx repository.Repos, st *commitState) error
}

// commitSteps run in order inside one transaction. A failing step aborts
// the rest and the transaction rollback undoes the ones before it.
func (c *Coordinator) commitSteps() []step {
	return []step{
		{name: "resolve-seats", run: resolveSeats},
		{name: "check-available", run: checkAvailable},
		{name: "price", run: priceBooking},
		{name: "insert-booking", run: c.insertBooking},
		{name: "insert-links", run: insertLinks},
		{name: "mark-booked", run: markBooked},
		{name: "claim-payment", run: c.claimPayment},
	}
}

func resolveSeats(ctx context.Context, tx repository.Repos, st *commitState) error {
	seats, err := tx.Seats().SeatsByIDs(ctx, st.res.ShowtimeID(), st.seatIDs)
	if err != nil {
		return err
	}
	st.seats = seats
	return nil
}

func checkAvailable(_ context.Context, _ repository.Repos, st *commitState) error {
	byID := make(map[int64]domain.Seat, len(st.seats))
	for _, s := range st.seats {
		byID[s.ID] = s
	}

	var taken []int64
	for _, id := range st.seatIDs {
		if s, ok := byID[id]; !ok || s.Status == domain.SeatBooked {
			taken = append(taken, id)
		}
	}

	if len(taken) > 0 {
		return &SeatsUnavailableError{SeatIDs: taken}
	}

	return nil
}

func priceBooking(ctx context.Context, tx repository.Repos, st *commitState) error {
	sh, err := tx.Showtimes().GetShowtime(ctx, st.res.ShowtimeID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrShowtimeNotFound
		}
		return err
	}
	st.showtime = sh

	total, err := pricing.ComputeTotal(sh.Price, len(st.seatIDs))
	if err != nil {
		return err
	}

	st.booking = &domain.Booking{
		UserID:        st.userID,
		ShowtimeID:    sh.ID,
		SeatIDs:       st.seatIDs,
		Total:         total,
		Status:        domain.BookingPending,
		PaymentMethod: st.method,
	}

	return nil
}

func (c *Coordinator) insertBooking(ctx context.Context, tx repository.Repos, st *commitState) error {
	now := c.now().UTC().Truncate(timePrecision)

	st.booking.ID = uuid.New()
	st.booking.CreatedAt = now
	st.booking.UpdatedAt = now

	return tx.Bookings().InsertBooking(ctx, st.booking)
}

func insertLinks(ctx context.Context, tx repository.Repos, st *commitState) error {
	links := make([]domain.BookingSeatLink, 0, len(st.seatIDs))
	for _, id := range st.seatIDs {
		links = append(links, domain.BookingSeatLink{
			BookingID:  st.booking.ID,
			SeatID:     id,
			ShowtimeID: st.booking.ShowtimeID,
		})
	}

	if err := tx.Bookings().InsertSeatLinks(ctx, links); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return &SeatsUnavailableError{SeatIDs: st.seatIDs}
		}
		return err
	}

	return nil
}

func markBooked(ctx context.Context, tx repository.Repos, st *commitState) error {
	if err := tx.Seats().MarkBooked(ctx, st.res.ShowtimeID(), st.seatIDs); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return &SeatsUnavailableError{SeatIDs: st.seatIDs}
		}
		return err
	}

	return nil
}

// claimPayment reserves the new booking for the charge that follows the
// commit, so a concurrent retry cannot charge it as well.
func (c *Coordinator) claimPayment(ctx context.Context, tx repository.Repos, st *commitState) error {
	now := c.now()
	return tx.Bookings().ClaimPayment(ctx, st.booking.ID, now, now.Add(c.claimTTL()))
}

// stepError names the commit step that failed.
type stepError struct {
	step string
	err  error
}

func (e *stepError) Error() string { return fmt.Sprintf("%s: %v", e.step, e.err) }
func (e *stepError) Unwrap() error { return e.err }
