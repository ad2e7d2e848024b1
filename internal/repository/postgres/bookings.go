package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/repository"
	"github.com/shopspring/decimal"
)

type BookingRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *BookingRepo) With(db DB) *BookingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BookingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const bookingColumns = `b.id, b.user_id, b.showtime_id, b.total::text, b.status,
	b.payment_method, b.payment_ref, b.created_at, b.updated_at,
	COALESCE(
		(SELECT array_agg(bs.seat_id ORDER BY bs.position)
		 FROM booking_seats bs WHERE bs.booking_id = b.id),
		'{}'
	)`

func (r *BookingRepo) InsertBooking(ctx context.Context, b *domain.Booking) error {
	const op = "postgres.BookingRepo.InsertBooking"

	if _, err := r.handle().Exec(ctx,
		`INSERT INTO bookings (
			id, user_id, showtime_id, total, status,
			payment_method, payment_ref, created_at, updated_at
		) VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9)`,
		b.ID, b.UserID, b.ShowtimeID, b.Total.String(), string(b.Status),
		string(b.PaymentMethod), b.PaymentRef, b.CreatedAt, b.UpdatedAt,
	); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *BookingRepo) InsertSeatLinks(ctx context.Context, links []domain.BookingSeatLink) error {
	const op = "postgres.BookingRepo.InsertSeatLinks"

	batch := &pgx.Batch{}
	for i, l := range links {
		batch.Queue(
			`INSERT INTO booking_seats (booking_id, seat_id, showtime_id, position)
			 VALUES ($1, $2, $3, $4)`,
			l.BookingID, l.SeatID, l.ShowtimeID, i,
		)
	}
	if err := r.handle().SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

// UpdateBookingStatus moves a booking between statuses.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - id: booking identifier.
//   - from: the status the booking must currently have.
//   - to: the new status.
//   - paymentRef: gateway reference to store alongside the change.
//
// Returns:
//   - error: repository.ErrConflict if the booking is not in status from.
func (r *BookingRepo) UpdateBookingStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.BookingStatus,
	paymentRef string,
) error {
	const op = "postgres.BookingRepo.UpdateBookingStatus"

	tag, err := r.handle().Exec(ctx,
		`UPDATE bookings
		 SET status = $3, payment_ref = $4, updated_at = $5, payment_claimed_until = NULL
		 WHERE id = $1 AND status = $2`,
		id, string(from), string(to), paymentRef, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrConflict)
	}

	return nil
}

// ClaimPayment reserves a pending booking for one charge attempt.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - id: booking identifier.
//   - now: current time; an older claim has expired.
//   - until: when this claim expires.
//
// Returns:
//   - error: repository.ErrConflict if the booking is not pending or a live
//     claim exists.
func (r *BookingRepo) ClaimPayment(ctx context.Context, id uuid.UUID, now, until time.Time) error {
	const op = "postgres.BookingRepo.ClaimPayment"

	tag, err := r.handle().Exec(ctx,
		`UPDATE bookings
		 SET payment_claimed_until = $2
		 WHERE id = $1
		   AND status = 'pending'
		   AND (payment_claimed_until IS NULL OR payment_claimed_until <= $3)`,
		id, until.UTC(), now.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrConflict)
	}

	return nil
}

// ReleasePayment clears the claim taken by ClaimPayment.
func (r *BookingRepo) ReleasePayment(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.BookingRepo.ReleasePayment"

	if _, err := r.handle().Exec(ctx,
		`UPDATE bookings SET payment_claimed_until = NULL WHERE id = $1`,
		id,
	); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

// GetBooking retrieves a booking together with its ordered seat ids.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - id: booking identifier.
//
// Returns:
//   - *domain.Booking: the booking when found.
//   - error: repository.ErrNotFound if the booking is not found.
func (r *BookingRepo) GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.GetBooking"

	row := r.handle().QueryRow(ctx,
		`SELECT `+bookingColumns+`
		 FROM bookings b
		 WHERE b.id = $1`,
		id,
	)

	b, err := scanBooking(row)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return b, nil
}

// ListUserBookings lists a user's bookings, newest first.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - userID: owner of the bookings.
//
// Returns:
//   - []domain.Booking: the bookings; empty when the user has none.
//   - error: any storage error.
func (r *BookingRepo) ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.ListUserBookings"

	rows, err := r.handle().Query(ctx,
		`SELECT `+bookingColumns+`
		 FROM bookings b
		 WHERE b.user_id = $1
		 ORDER BY b.created_at DESC, b.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b              domain.Booking
		total          string
		status, method string
	)

	if err := row.Scan(
		&b.ID, &b.UserID, &b.ShowtimeID, &total, &status,
		&method, &b.PaymentRef, &b.CreatedAt, &b.UpdatedAt, &b.SeatIDs,
	); err != nil {
		return nil, err
	}

	var err error
	if b.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	b.Status = domain.BookingStatus(status)
	b.PaymentMethod = domain.PaymentMethod(method)
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()

	return &b, nil
}
