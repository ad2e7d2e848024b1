package booking_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/notify"
	"github.com/kirinyoku/cinebook/internal/repository/sqlite/sqlitetest"
	"github.com/kirinyoku/cinebook/internal/service/booking"
	"github.com/kirinyoku/cinebook/internal/service/reservation"
)

type fakeGateway struct {
	mu       sync.Mutex
	fail     error
	block    bool
	delay    time.Duration
	calls    int
	captures int
	counter  atomic.Int64
}

func (g *fakeGateway) Charge(ctx context.Context, _ booking.ChargeRequest) (string, error) {
	g.mu.Lock()
	g.calls++
	fail, block, delay := g.fail, g.block, g.delay
	g.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if fail != nil {
		return "", fail
	}

	g.mu.Lock()
	g.captures++
	g.mu.Unlock()

	return "PAY-" + strconv.FormatInt(g.counter.Add(1), 10), nil
}

func (g *fakeGateway) captured() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.captures
}

func (g *fakeGateway) set(fail error, block bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail, g.block = fail, block
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.BookingConfirmed
}

func (n *fakeNotifier) PublishBookingConfirmed(_ context.Context, ev notify.BookingConfirmed) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

type fixture struct {
	st       sqlitetest.Showtime
	res      *reservation.Service
	coord    *booking.Coordinator
	gateway  *fakeGateway
	notifier *fakeNotifier
}

func newFixture(t *testing.T, cfg booking.Config) *fixture {
	t.Helper()

	store := sqlitetest.Open(t)
	st := sqlitetest.SeedShowtime(t, store, "200", []string{"A"}, 5)

	gw := &fakeGateway{}
	nt := &fakeNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		st:       st,
		res:      reservation.New(store, reservation.Config{}),
		coord:    booking.New(store, nil, gw, nt, logger, cfg),
		gateway:  gw,
		notifier: nt,
	}
}

func (f *fixture) prepare(t *testing.T, labels ...string) reservation.ValidatedReservation {
	t.Helper()

	res, err := f.res.Prepare(context.Background(), f.st.ID, f.st.IDs(t, labels...), len(labels))
	if err != nil {
		t.Fatalf("prepare %v: %v", labels, err)
	}
	return res
}

func seatStatus(t *testing.T, f *fixture, label string) domain.SeatStatus {
	t.Helper()

	seats, err := f.res.SeatMap(context.Background(), f.st.ID)
	if err != nil {
		t.Fatalf("seat map: %v", err)
	}
	for _, s := range seats {
		if s.Label() == label {
			return s.Status
		}
	}
	t.Fatalf("seat %s not found", label)
	return ""
}

func TestCommitBooksAndPays(t *testing.T) {
	t.Parallel()

	f := newFixture(t, booking.Config{})
	res := f.prepare(t, "A1", "A3")

	b, err := f.coord.Commit(context.Background(), "user-1", res, domain.PaymentUPI)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if got, want := b.Total.StringFixed(2), "400.00"; got != want {
		t.Fatalf("total: got %v, want %v", got, want)
	}
	if b.Status != domain.BookingPaid {
		t.Fatalf("status: got %v, want %v", b.Status, domain.BookingPaid)
	}
	if b.PaymentRef == "" {
		t.Fatal("payment ref is empty")
	}

	for _, l := range []string{"A1", "A3"} {
		if got := seatStatus(t, f, l); got != domain.SeatBooked {
			t.Fatalf("seat %s: got %v, want %v", l, got, domain.SeatBooked)
		}
	}
	for _, l := range []string{"A2", "A4", "A5"} {
		if got := seatStatus(t, f, l); got != domain.SeatAvailable {
			t.Fatalf("seat %s: got %v, want %v", l, got, domain.SeatAvailable)
		}
	}

	if len(f.notifier.events) != 1 {
		t.Fatalf("events: got %d, want 1", len(f.notifier.events))
	}
	ev := f.notifier.events[0]
	if ev.Code != b.Code() || ev.Total != "400.00" || len(ev.SeatLabels) != 2 {
		t.Fatalf("unexpected confirmation %+v", ev)
	}
}

func TestCommitRaceHasOneWinner(t *testing.T) {
	t.Parallel()

	f := newFixture(t, booking.Config{})
	res := f.prepare(t, "A2")

	const contenders = 4

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
		lost atomic.Int32
	)

	for i := range contenders {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			_, err := f.coord.Commit(context.Background(), "user-"+strconv.Itoa(i), res, domain.PaymentCredit)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, booking.ErrSeatsUnavailable):
				lost.Add(1)
			default:
				t.Errorf("contender %d: unexpected error %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("winners: got %d, want 1", wins.Load())
	}
	if lost.Load() != contenders-1 {
		t.Fatalf("losers: got %d, want %d", lost.Load(), contenders-1)
	}
}

func TestCommitRejectsSeatTakenAfterValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, booking.Config{})
	first := f.prepare(t, "A1", "A2")
	second := f.prepare(t, "A2", "A3")

	if _, err := f.coord.Commit(context.Background(), "user-1", first, domain.PaymentDebit); err != nil {
		t.Fatalf("first commit: %v", err)
	}

	_, err := f.coord.Commit(context.Background(), "user-2", second, domain.PaymentDebit)

	var unavailable *booking.SeatsUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("err = %v, want *SeatsUnavailableError", err)
	}
	if len(unavailable.SeatIDs) != 1 || unavailable.SeatIDs[0] != f.st.Seats["A2"] {
		t.Fatalf("taken: got %v, want [%d]", unavailable.SeatIDs, f.st.Seats["A2"])
	}

	// A3 was not touched by the failed attempt
	if got := seatStatus(t, f, "A3"); got != domain.SeatAvailable {
		t.Fatalf("seat A3: got %v, want %v", got, domain.SeatAvailable)
	}
}

func TestCommitDeclinedKeepsBookingPending(t *testing.T) {
	t.Parallel()

	f := newFixture(t, booking.Config{})
	f.gateway.set(errors.New("card declined"), false)

	b, err := f.coord.Commit(context.Background(), "user-1", f.prepare(t, "A4"), domain.PaymentCredit)
	if !errors.Is(err, booking.ErrPaymentFailed) {
		t.Fatalf("err = %v, want %v", err, booking.ErrPaymentFailed)
	}

	var perr *booking.PaymentError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *PaymentError", err)
	}
	if b == nil || perr.BookingID != b.ID {
		t.Fatalf("booking not returned with payment error: %v", b)
	}
	if b.Status != domain.BookingPending {
		t.Fatalf("status: got %v, want %v", b.Status, domain.BookingPending)
	}
	if got := seatStatus(t, f, "A4"); got != domain.SeatBooked {
		t.Fatalf("seat A4: got %v, want %v", got, domain.SeatBooked)
	}
	if len(f.notifier.events) != 0 {
		t.Fatalf("events: got %d, want 0", len(f.notifier.events))
	}
}

func TestCommitPaymentTimeoutIsIndeterminate(t *testing.T) {
	t.Parallel()

	f := newFixture(t, booking.Config{PaymentTimeout: 20 * time.Millisecond})
	f.gateway.set(nil, true)

	b, err := f.coord.Commit(context.Background(), "user-1", f.prepare(t, "A5"), domain.PaymentUPI)
	if !errors.Is(err, booking.ErrPaymentIndeterminate) {
		t.Fatalf("err = %v, want %v", err, booking.ErrPaymentIndeterminate)
	}
	if errors.Is(err, booking.ErrPaymentFailed) {
		t.Fatalf("timeout must not be reported as a decline: %v", err)
	}
	if b == nil || b.Status != domain.BookingPending {
		t.Fatalf("booking: got %+v, want pending", b)
	}
}

func TestCommitRejectsBeforeWriting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		userID string
		method domain.PaymentMethod
		want   error
	}{
		{name: "unauthenticated", userID: "", method: domain.PaymentUPI, want: booking.ErrUnauthenticated},
		{name: "bad method", userID: "user-1", method: "cash", want: booking.ErrInvalidPaymentMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, booking.Config{})

			_, err := f.coord.Commit(context.Background(), tt.userID, f.prepare(t, "A1"), tt.method)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if got := seatStatus(t, f, "A1"); got != domain.SeatAvailable {
				t.Fatalf("seat A1: got %v, want %v", got, domain.SeatAvailable)
			}
			if f.gateway.calls != 0 {
				t.Fatalf("gateway calls: got %d, want 0", f.gateway.calls)
			}
		})
	}
}

func TestCommitRejectsEmptyReservation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, booking.Config{})

	_, err := f.coord.Commit(context.Background(), "user-1", reservation.ValidatedReservation{}, domain.PaymentUPI)
	if !errors.Is(err, reservation.ErrValidation) {
		t.Fatalf("err = %v, want %v", err, reservation.ErrValidation)
	}
}

func TestRetryPayment(t *testing.T) {
	t.Parallel()

	f := newFixture(t, booking.Config{})
	ctx := context.Background()

	f.gateway.set(errors.New("card declined"), false)
	b, err := f.coord.Commit(ctx, "user-1", f.prepare(t, "A1"), domain.PaymentCredit)
	if !errors.Is(err, booking.ErrPaymentFailed) {
		t.Fatalf("commit err = %v, want %v", err, booking.ErrPaymentFailed)
	}

	if _, err := f.coord.RetryPayment(ctx, "someone-else", b.ID); !errors.Is(err, booking.ErrBookingNotFound) {
		t.Fatalf("foreign retry err = %v, want %v", err, booking.ErrBookingNotFound)
	}

	f.gateway.set(nil, false)
	paid, err := f.coord.RetryPayment(ctx, "user-1", b.ID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if paid.Status != domain.BookingPaid || paid.PaymentRef == "" {
		t.Fatalf("retry booking: got %+v, want paid", paid)
	}
	if len(f.notifier.events) != 1 {
		t.Fatalf("events: got %d, want 1", len(f.notifier.events))
	}

	if _, err := f.coord.RetryPayment(ctx, "user-1", b.ID); !errors.Is(err, booking.ErrAlreadyPaid) {
		t.Fatalf("second retry err = %v, want %v", err, booking.ErrAlreadyPaid)
	}
}

func TestConcurrentRetriesChargeOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t, booking.Config{})
	ctx := context.Background()

	f.gateway.set(errors.New("card declined"), false)
	b, err := f.coord.Commit(ctx, "user-1", f.prepare(t, "A2"), domain.PaymentDebit)
	if !errors.Is(err, booking.ErrPaymentFailed) {
		t.Fatalf("commit err = %v, want %v", err, booking.ErrPaymentFailed)
	}

	f.gateway.mu.Lock()
	f.gateway.fail, f.gateway.delay = nil, 50*time.Millisecond
	f.gateway.mu.Unlock()

	const attempts = 2

	var (
		wg   sync.WaitGroup
		errs = make([]error, attempts)
	)
	for i := range attempts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.coord.RetryPayment(ctx, "user-1", b.ID)
		}(i)
	}
	wg.Wait()

	var paid int
	for i, err := range errs {
		switch {
		case err == nil:
			paid++
		case errors.Is(err, booking.ErrPaymentInProgress), errors.Is(err, booking.ErrAlreadyPaid):
		default:
			t.Fatalf("attempt %d: unexpected error %v", i, err)
		}
	}

	if paid != 1 {
		t.Fatalf("successful retries = %d, want 1 (errors %v)", paid, errs)
	}
	if got := f.gateway.captured(); got != 1 {
		t.Fatalf("captures = %d, want 1", got)
	}
}

func TestRetryAfterFailedAttemptCanClaimAgain(t *testing.T) {
	t.Parallel()

	f := newFixture(t, booking.Config{})
	ctx := context.Background()

	f.gateway.set(errors.New("card declined"), false)
	b, _ := f.coord.Commit(ctx, "user-1", f.prepare(t, "A3"), domain.PaymentUPI)

	if _, err := f.coord.RetryPayment(ctx, "user-1", b.ID); !errors.Is(err, booking.ErrPaymentFailed) {
		t.Fatalf("first retry err = %v, want %v", err, booking.ErrPaymentFailed)
	}

	f.gateway.set(nil, false)
	if _, err := f.coord.RetryPayment(ctx, "user-1", b.ID); err != nil {
		t.Fatalf("second retry: %v", err)
	}
}
