// Package repository declares the persistence contracts shared by the
// postgres and sqlite backends.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/cinebook/internal/domain"
)

type ShowtimeRepository interface {
	// GetShowtime returns the showtime with its movie title and theater name,
	// or ErrNotFound.
	GetShowtime(ctx context.Context, id int64) (*domain.Showtime, error)
}

type SeatRepository interface {
	// ListSeats returns every seat of the showtime in seat-map order.
	ListSeats(ctx context.Context, showtimeID int64) ([]domain.Seat, error)
	// SeatsByIDs returns the seats among ids that belong to the showtime.
	// Missing ids are silently skipped.
	SeatsByIDs(ctx context.Context, showtimeID int64, ids []int64) ([]domain.Seat, error)
	// MarkBooked flips every seat in ids to booked, or none of them. It
	// returns ErrConflict when any seat was already booked or does not exist.
	MarkBooked(ctx context.Context, showtimeID int64, ids []int64) error
	CountsByStatus(ctx context.Context, showtimeID int64) (*domain.SeatCounts, error)
}

type BookingRepository interface {
	InsertBooking(ctx context.Context, b *domain.Booking) error
	InsertSeatLinks(ctx context.Context, links []domain.BookingSeatLink) error
	// UpdateBookingStatus moves a booking from one status to another. It
	// returns ErrConflict when the booking is not currently in from.
	UpdateBookingStatus(
		ctx context.Context,
		id uuid.UUID,
		from, to domain.BookingStatus,
		paymentRef string,
	) error
	// ClaimPayment marks a pending booking as being charged until the given
	// time. It returns ErrConflict when the booking is not pending or another
	// claim is still live.
	ClaimPayment(ctx context.Context, id uuid.UUID, now, until time.Time) error
	// ReleasePayment drops the claim taken by ClaimPayment.
	ReleasePayment(ctx context.Context, id uuid.UUID) error
	GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	// ListUserBookings returns the user's bookings, newest first.
	ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error)
}

type AdminRepository interface {
	CreateMovie(ctx context.Context, m domain.Movie) (int64, error)
	CreateTheater(ctx context.Context, t domain.Theater) (int64, error)
	CreateShowtime(ctx context.Context, s domain.Showtime) (int64, error)
	BatchCreateSeats(ctx context.Context, showtimeID int64, seats []domain.Seat) error
}

// Repos groups the repositories bound to one database handle, either the
// pool or an open transaction.
type Repos interface {
	Showtimes() ShowtimeRepository
	Seats() SeatRepository
	Bookings() BookingRepository
	Admin() AdminRepository
}

type Store interface {
	Repos
	// RunTx runs fn inside a read-write transaction. The transaction is
	// committed when fn returns nil and rolled back otherwise.
	RunTx(ctx context.Context, fn func(ctx context.Context, tx Repos) error) error
	Close() error
}
