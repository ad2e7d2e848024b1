// Package booking turns a validated seat selection into a persisted, paid
// booking.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/notify"
	"github.com/kirinyoku/cinebook/internal/pricing"
	"github.com/kirinyoku/cinebook/internal/repository"
	redisrepo "github.com/kirinyoku/cinebook/internal/repository/redis"
	"github.com/kirinyoku/cinebook/internal/service/reservation"
	"github.com/kirinyoku/cinebook/internal/uow"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// stored timestamps keep millisecond precision on every backend
const timePrecision = time.Millisecond

type ChargeRequest struct {
	// IdempotencyKey is the same for every attempt on one booking. A gateway
	// must not capture twice for one key.
	IdempotencyKey string
	BookingID      uuid.UUID
	UserID         string
	Amount         decimal.Decimal
	Method         domain.PaymentMethod
}

// Gateway charges a booking. It returns the processor's payment reference.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (string, error)
}

// Notifier delivers booking confirmations to the notification worker.
type Notifier interface {
	PublishBookingConfirmed(ctx context.Context, ev notify.BookingConfirmed) error
}

type Config struct {
	PaymentTimeout time.Duration
}

type Coordinator struct {
	store    repository.Store
	uow      *uow.UoW
	cache    *redisrepo.Cache
	gateway  Gateway
	notifier Notifier
	logger   *slog.Logger
	tracer   trace.Tracer
	cfg      Config
	now      func() time.Time
}

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

func New(
	store repository.Store,
	cache *redisrepo.Cache,
	gateway Gateway,
	notifier Notifier,
	logger *slog.Logger,
	cfg Config,
	opts ...Option,
) *Coordinator {
	if cfg.PaymentTimeout <= 0 {
		cfg.PaymentTimeout = 10 * time.Second
	}

	if logger == nil {
		logger = slog.Default()
	}

	c := &Coordinator{
		store:    store,
		uow:      uow.NewUoW(store),
		cache:    cache,
		gateway:  gateway,
		notifier: notifier,
		logger:   logger,
		tracer:   otel.Tracer("github.com/kirinyoku/cinebook/internal/service/booking"),
		cfg:      cfg,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Commit books the seats of res for userID and charges the booking.
//
// Seat re-check, pricing, booking and link inserts and seat marking run as
// one transaction; nothing is visible unless all of them succeed. Payment
// runs after the commit. When payment fails the committed booking is
// returned together with a *PaymentError, the booking stays pending and its
// seats stay booked.
//
// Parameters:
//   - ctx: request-scoped context.
//   - userID: the signed-in user; empty means unauthenticated.
//   - res: a selection produced by the reservation engine.
//   - method: credit, debit or upi.
//
// Returns:
//   - *domain.Booking: the booking, non-nil once the transaction committed.
//   - error: ErrUnauthenticated, ErrInvalidPaymentMethod,
//     *reservation.ValidationError, ErrSeatsUnavailable, ErrShowtimeNotFound,
//     ErrStorage, or a *PaymentError wrapping ErrPaymentFailed or
//     ErrPaymentIndeterminate.
func (c *Coordinator) Commit(
	ctx context.Context,
	userID string,
	res reservation.ValidatedReservation,
	method domain.PaymentMethod,
) (*domain.Booking, error) {
	const op = "service.booking.Commit"

	ctx, span := c.tracer.Start(ctx, "booking.Commit", trace.WithAttributes(
		attribute.Int64("showtime.id", res.ShowtimeID()),
		attribute.Int("seats.count", res.TicketCount()),
	))
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	if !method.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidPaymentMethod)
	}

	seatIDs := res.SeatIDs()
	if len(seatIDs) == 0 || len(seatIDs) != res.TicketCount() {
		return nil, fmt.Errorf("%s: %w", op, &reservation.ValidationError{
			Reason: reservation.ReasonWrongCount,
			Want:   res.TicketCount(),
			Got:    len(seatIDs),
		})
	}

	st := &commitState{
		userID:  userID,
		res:     res,
		seatIDs: seatIDs,
		method:  method,
	}

	err := c.uow.Do(ctx, func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		for _, s := range c.commitSteps() {
			span.AddEvent(s.name)
			if err := s.run(ctx, tx, st); err != nil {
				return &stepError{step: s.name, err: err}
			}
		}

		showtimeID := res.ShowtimeID()
		after(func(ctx context.Context) {
			if err := c.cache.InvalidateAvailability(ctx, showtimeID); err != nil {
				c.logger.Warn("invalidate availability", "showtime_id", showtimeID, "error", err)
			}
		})

		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit failed")

		switch {
		case errors.Is(err, ErrSeatsUnavailable):
			c.logger.Info("seats taken before commit",
				"showtime_id", res.ShowtimeID(), "user_id", userID, "error", err)
			return nil, fmt.Errorf("%s: %w", op, err)
		case errors.Is(err, ErrShowtimeNotFound):
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		c.logger.Error("booking commit failed",
			"showtime_id", res.ShowtimeID(), "user_id", userID, "error", err)
		return nil, fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
	}

	b := st.booking
	span.SetAttributes(attribute.String("booking.id", b.ID.String()))

	c.logger.Info("booking committed",
		"booking_id", b.ID,
		"showtime_id", b.ShowtimeID,
		"user_id", userID,
		"seats", len(b.SeatIDs),
		"total", pricing.Format(b.Total),
	)

	if err := c.pay(ctx, b, st.showtime, st.seats); err != nil {
		span.RecordError(err)
		return b, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

// RetryPayment charges a pending booking again.
//
// Parameters:
//   - ctx: request-scoped context.
//   - userID: the signed-in user; must own the booking.
//   - bookingID: the booking to pay.
//
// Returns:
//   - *domain.Booking: the booking after the attempt.
//   - error: ErrUnauthenticated, ErrBookingNotFound, ErrAlreadyPaid,
//     ErrNotPayable, ErrPaymentInProgress, ErrStorage, or a *PaymentError.
func (c *Coordinator) RetryPayment(ctx context.Context, userID string, bookingID uuid.UUID) (*domain.Booking, error) {
	const op = "service.booking.RetryPayment"

	ctx, span := c.tracer.Start(ctx, "booking.RetryPayment", trace.WithAttributes(
		attribute.String("booking.id", bookingID.String()),
	))
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	b, err := c.store.Bookings().GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
		}
		return nil, fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
	}

	if b.UserID != userID {
		return nil, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
	}

	switch b.Status {
	case domain.BookingPending:
	case domain.BookingPaid:
		return b, fmt.Errorf("%s: %w", op, ErrAlreadyPaid)
	default:
		return b, fmt.Errorf("%s: %w", op, ErrNotPayable)
	}

	now := c.now()
	if err := c.store.Bookings().ClaimPayment(ctx, b.ID, now, now.Add(c.claimTTL())); err != nil {
		if !errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
		}

		// lost the claim: either paid meanwhile or another attempt is running
		cur, gerr := c.store.Bookings().GetBooking(ctx, bookingID)
		if gerr == nil && cur.Status == domain.BookingPaid {
			return cur, fmt.Errorf("%s: %w", op, ErrAlreadyPaid)
		}
		return b, fmt.Errorf("%s: %w", op, ErrPaymentInProgress)
	}

	sh, err := c.store.Showtimes().GetShowtime(ctx, b.ShowtimeID)
	if err != nil {
		c.release(ctx, b.ID)
		return nil, fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
	}

	seats, err := c.store.Seats().SeatsByIDs(ctx, b.ShowtimeID, b.SeatIDs)
	if err != nil {
		c.release(ctx, b.ID)
		return nil, fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
	}

	if err := c.pay(ctx, b, sh, seats); err != nil {
		span.RecordError(err)
		return b, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

// pay charges b outside any transaction and, on success, marks it paid and
// queues the confirmation. The caller holds the payment claim on b; pay
// either turns it into the paid status or releases it. b is updated in
// place.
func (c *Coordinator) pay(ctx context.Context, b *domain.Booking, sh *domain.Showtime, seats []domain.Seat) error {
	payCtx, cancel := context.WithTimeout(ctx, c.cfg.PaymentTimeout)
	defer cancel()

	ref, err := c.gateway.Charge(payCtx, ChargeRequest{
		IdempotencyKey: b.ID.String(),
		BookingID:      b.ID,
		UserID:         b.UserID,
		Amount:         b.Total,
		Method:         b.PaymentMethod,
	})
	if err != nil {
		kind := ErrPaymentFailed
		if payCtx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			kind = ErrPaymentIndeterminate
		}

		c.logger.Warn("payment not completed",
			"booking_id", b.ID, "user_id", b.UserID, "outcome", kind.Error(), "error", err)

		c.release(ctx, b.ID)

		return &PaymentError{BookingID: b.ID, Kind: kind, Cause: err}
	}

	// the money is captured; the status write must not depend on the caller
	// still waiting
	wctx := context.WithoutCancel(ctx)

	if err := c.store.Bookings().UpdateBookingStatus(wctx, b.ID, domain.BookingPending, domain.BookingPaid, ref); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrAlreadyPaid
		}

		// the claim is left to expire; a retry reuses the idempotency key
		c.logger.Error("payment captured but booking not updated",
			"booking_id", b.ID, "payment_ref", ref, "error", err)
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	b.Status = domain.BookingPaid
	b.PaymentRef = ref
	b.UpdatedAt = c.now().UTC().Truncate(timePrecision)

	c.logger.Info("booking paid", "booking_id", b.ID, "payment_ref", ref)

	c.confirm(wctx, b, sh, seats)

	return nil
}

// release drops the payment claim on a booking that stays pending.
func (c *Coordinator) release(ctx context.Context, id uuid.UUID) {
	if err := c.store.Bookings().ReleasePayment(context.WithoutCancel(ctx), id); err != nil {
		c.logger.Warn("release payment claim", "booking_id", id, "error", err)
	}
}

// claimTTL bounds how long a crashed attempt blocks retries.
func (c *Coordinator) claimTTL() time.Duration {
	return 2 * c.cfg.PaymentTimeout
}

// confirm queues the confirmation mail. Failures are logged only: the
// booking is already paid.
func (c *Coordinator) confirm(ctx context.Context, b *domain.Booking, sh *domain.Showtime, seats []domain.Seat) {
	if c.notifier == nil {
		return
	}

	labels := make([]string, 0, len(seats))
	for _, s := range seats {
		labels = append(labels, s.Label())
	}

	ev := notify.BookingConfirmed{
		BookingID:   b.ID.String(),
		Code:        b.Code(),
		UserID:      b.UserID,
		ShowtimeID:  b.ShowtimeID,
		SeatLabels:  labels,
		Total:       pricing.Format(b.Total),
		PaymentRef:  b.PaymentRef,
		ConfirmedAt: b.UpdatedAt,
	}
	if sh != nil {
		ev.MovieTitle = sh.MovieTitle
		ev.TheaterName = sh.TheaterName
		ev.StartsAt = sh.StartsAt
	}

	if err := c.notifier.PublishBookingConfirmed(ctx, ev); err != nil {
		c.logger.Warn("publish booking confirmation", "booking_id", b.ID, "error", err)
	}
}
