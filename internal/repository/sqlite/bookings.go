package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/repository"
	"github.com/shopspring/decimal"
)

type BookingRepo struct {
	db DB
}

func (r *BookingRepo) InsertBooking(ctx context.Context, b *domain.Booking) error {
	const op = "sqlite.BookingRepo.InsertBooking"

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bookings (
			id, user_id, showtime_id, total, status,
			payment_method, payment_ref, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID.String(),
		b.UserID,
		b.ShowtimeID,
		b.Total.String(),
		string(b.Status),
		string(b.PaymentMethod),
		b.PaymentRef,
		b.CreatedAt.UTC().UnixMilli(),
		b.UpdatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *BookingRepo) InsertSeatLinks(ctx context.Context, links []domain.BookingSeatLink) error {
	const op = "sqlite.BookingRepo.InsertSeatLinks"

	for i, l := range links {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO booking_seats (booking_id, seat_id, showtime_id, position)
			 VALUES (?, ?, ?, ?)`,
			l.BookingID.String(), l.SeatID, l.ShowtimeID, i,
		); err != nil {
			return fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
	}

	return nil
}

func (r *BookingRepo) UpdateBookingStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.BookingStatus,
	paymentRef string,
) error {
	const op = "sqlite.BookingRepo.UpdateBookingStatus"

	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings
		 SET status = ?, payment_ref = ?, updated_at = ?, payment_claimed_until = NULL
		 WHERE id = ? AND status = ?`,
		string(to), paymentRef, time.Now().UTC().UnixMilli(), id.String(), string(from),
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if n == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrConflict)
	}

	return nil
}

func (r *BookingRepo) ClaimPayment(ctx context.Context, id uuid.UUID, now, until time.Time) error {
	const op = "sqlite.BookingRepo.ClaimPayment"

	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings
		 SET payment_claimed_until = ?
		 WHERE id = ?
		   AND status = 'pending'
		   AND (payment_claimed_until IS NULL OR payment_claimed_until <= ?)`,
		until.UTC().UnixMilli(), id.String(), now.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if n == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrConflict)
	}

	return nil
}

func (r *BookingRepo) ReleasePayment(ctx context.Context, id uuid.UUID) error {
	const op = "sqlite.BookingRepo.ReleasePayment"

	if _, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET payment_claimed_until = NULL WHERE id = ?`,
		id.String(),
	); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *BookingRepo) GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "sqlite.BookingRepo.GetBooking"

	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, showtime_id, total, status,
			payment_method, payment_ref, created_at, updated_at
		 FROM bookings
		 WHERE id = ?`,
		id.String(),
	)

	b, err := scanBooking(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if b.SeatIDs, err = r.seatIDs(ctx, b.ID); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return b, nil
}

func (r *BookingRepo) ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	const op = "sqlite.BookingRepo.ListUserBookings"

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, showtime_id, total, status,
			payment_method, payment_ref, created_at, updated_at
		 FROM bookings
		 WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	rows.Close()

	for i := range out {
		if out[i].SeatIDs, err = r.seatIDs(ctx, out[i].ID); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
	}

	return out, nil
}

func (r *BookingRepo) seatIDs(ctx context.Context, bookingID uuid.UUID) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seat_id FROM booking_seats WHERE booking_id = ? ORDER BY position`,
		bookingID.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func scanBooking(scan func(dest ...any) error) (*domain.Booking, error) {
	var (
		b                    domain.Booking
		id, total            string
		status, method       string
		createdAt, updatedAt int64
	)

	if err := scan(
		&id, &b.UserID, &b.ShowtimeID, &total, &status,
		&method, &b.PaymentRef, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if b.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse booking id: %w", err)
	}
	if b.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	b.Status = domain.BookingStatus(status)
	b.PaymentMethod = domain.PaymentMethod(method)
	b.CreatedAt = time.UnixMilli(createdAt).UTC()
	b.UpdatedAt = time.UnixMilli(updatedAt).UTC()

	return &b, nil
}
