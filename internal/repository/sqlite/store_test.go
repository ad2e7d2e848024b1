package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/repository"
	"github.com/kirinyoku/cinebook/internal/repository/sqlite/sqlitetest"
	"github.com/shopspring/decimal"
)

func TestListSeatsOrdersNumerically(t *testing.T) {
	t.Parallel()

	store := sqlitetest.Open(t)
	st := sqlitetest.SeedShowtime(t, store, "200", []string{"B", "A"}, 10)

	seats, err := store.Seats().ListSeats(context.Background(), st.ID)
	if err != nil {
		t.Fatalf("list seats: %v", err)
	}
	if len(seats) != 20 {
		t.Fatalf("seats len = %d, want 20", len(seats))
	}

	want := []string{"A1", "A2", "A3", "A4", "A5", "A6", "A7", "A8", "A9", "A10", "B1"}
	for i, label := range want {
		if seats[i].Label() != label {
			t.Fatalf("seats[%d] = %s, want %s", i, seats[i].Label(), label)
		}
	}
}

func TestGetShowtime(t *testing.T) {
	t.Parallel()

	store := sqlitetest.Open(t)
	st := sqlitetest.SeedShowtime(t, store, "149.50", []string{"A"}, 1)

	got, err := store.Showtimes().GetShowtime(context.Background(), st.ID)
	if err != nil {
		t.Fatalf("get showtime: %v", err)
	}
	if !got.Price.Equal(decimal.RequireFromString("149.50")) {
		t.Fatalf("price = %s, want 149.50", got.Price)
	}
	if got.MovieTitle != "Interstellar" {
		t.Fatalf("movie title = %q, want %q", got.MovieTitle, "Interstellar")
	}

	if _, err := store.Showtimes().GetShowtime(context.Background(), st.ID+100); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing showtime err = %v, want %v", err, repository.ErrNotFound)
	}
}

func TestMarkBookedIsAllOrNothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := sqlitetest.Open(t)
	st := sqlitetest.SeedShowtime(t, store, "200", []string{"A"}, 5)

	if err := store.Seats().MarkBooked(ctx, st.ID, st.IDs(t, "A2")); err != nil {
		t.Fatalf("book A2: %v", err)
	}

	err := store.RunTx(ctx, func(ctx context.Context, tx repository.Repos) error {
		return tx.Seats().MarkBooked(ctx, st.ID, st.IDs(t, "A1", "A2", "A3"))
	})
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("mark booked err = %v, want %v", err, repository.ErrConflict)
	}

	seats, err := store.Seats().SeatsByIDs(ctx, st.ID, st.IDs(t, "A1", "A3"))
	if err != nil {
		t.Fatalf("seats by ids: %v", err)
	}
	for _, s := range seats {
		if s.Status != domain.SeatAvailable {
			t.Fatalf("seat %s status = %s, want %s", s.Label(), s.Status, domain.SeatAvailable)
		}
	}
}

func TestMarkBookedOutsideTxWritesNothingOnConflict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := sqlitetest.Open(t)
	st := sqlitetest.SeedShowtime(t, store, "200", []string{"A"}, 5)

	if err := store.Seats().MarkBooked(ctx, st.ID, st.IDs(t, "A2")); err != nil {
		t.Fatalf("book A2: %v", err)
	}

	tests := []struct {
		name string
		ids  []int64
	}{
		{name: "one seat booked", ids: st.IDs(t, "A1", "A2", "A3")},
		{name: "one seat missing", ids: append(st.IDs(t, "A4", "A5"), st.Seats["A5"]+1000)},
	}

	for _, tt := range tests {
		err := store.Seats().MarkBooked(ctx, st.ID, tt.ids)
		if !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("%s: err = %v, want %v", tt.name, err, repository.ErrConflict)
		}
	}

	counts, err := store.Seats().CountsByStatus(ctx, st.ID)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts.Booked != 1 || counts.Available != 4 {
		t.Fatalf("counts = %+v, want only A2 booked", *counts)
	}
}

func TestMarkBookedRejectsForeignSeat(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := sqlitetest.Open(t)
	first := sqlitetest.SeedShowtime(t, store, "200", []string{"A"}, 2)
	second := sqlitetest.SeedShowtime(t, store, "200", []string{"A"}, 2)

	err := store.Seats().MarkBooked(ctx, first.ID, second.IDs(t, "A1"))
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("mark booked err = %v, want %v", err, repository.ErrConflict)
	}
}

func TestCountsByStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := sqlitetest.Open(t)
	st := sqlitetest.SeedShowtime(t, store, "200", []string{"A"}, 4)

	if err := store.Seats().MarkBooked(ctx, st.ID, st.IDs(t, "A1", "A4")); err != nil {
		t.Fatalf("mark booked: %v", err)
	}

	got, err := store.Seats().CountsByStatus(ctx, st.ID)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	want := domain.SeatCounts{Available: 2, Booked: 2, Total: 4}
	if *got != want {
		t.Fatalf("counts = %+v, want %+v", *got, want)
	}
}

func TestBookingLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := sqlitetest.Open(t)
	st := sqlitetest.SeedShowtime(t, store, "200", []string{"A"}, 5)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	b := &domain.Booking{
		ID:            uuid.New(),
		UserID:        "user-1",
		ShowtimeID:    st.ID,
		SeatIDs:       st.IDs(t, "A3", "A1"),
		Total:         decimal.NewFromInt(400),
		Status:        domain.BookingPending,
		PaymentMethod: domain.PaymentUPI,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := store.RunTx(ctx, func(ctx context.Context, tx repository.Repos) error {
		if err := tx.Bookings().InsertBooking(ctx, b); err != nil {
			return err
		}
		links := make([]domain.BookingSeatLink, 0, len(b.SeatIDs))
		for _, id := range b.SeatIDs {
			links = append(links, domain.BookingSeatLink{BookingID: b.ID, SeatID: id, ShowtimeID: st.ID})
		}
		return tx.Bookings().InsertSeatLinks(ctx, links)
	})
	if err != nil {
		t.Fatalf("insert booking: %v", err)
	}

	if err := store.Bookings().UpdateBookingStatus(ctx, b.ID, domain.BookingPending, domain.BookingPaid, "PAY-1"); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	err = store.Bookings().UpdateBookingStatus(ctx, b.ID, domain.BookingPending, domain.BookingPaid, "PAY-2")
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("second update err = %v, want %v", err, repository.ErrConflict)
	}

	got, err := store.Bookings().GetBooking(ctx, b.ID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if got.Status != domain.BookingPaid || got.PaymentRef != "PAY-1" {
		t.Fatalf("booking = %s/%s, want paid/PAY-1", got.Status, got.PaymentRef)
	}
	if !got.Total.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("total = %s, want 400", got.Total)
	}
	if len(got.SeatIDs) != 2 || got.SeatIDs[0] != b.SeatIDs[0] || got.SeatIDs[1] != b.SeatIDs[1] {
		t.Fatalf("seat ids = %v, want %v", got.SeatIDs, b.SeatIDs)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created at = %v, want %v", got.CreatedAt, now)
	}
}

func TestSeatLinkedOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := sqlitetest.Open(t)
	st := sqlitetest.SeedShowtime(t, store, "200", []string{"A"}, 2)
	seat := st.IDs(t, "A1")[0]

	insert := func(user string) error {
		return store.RunTx(ctx, func(ctx context.Context, tx repository.Repos) error {
			b := &domain.Booking{
				ID: uuid.New(), UserID: user, ShowtimeID: st.ID, SeatIDs: []int64{seat},
				Total: decimal.NewFromInt(200), Status: domain.BookingPending,
				PaymentMethod: domain.PaymentCredit, CreatedAt: time.Now(), UpdatedAt: time.Now(),
			}
			if err := tx.Bookings().InsertBooking(ctx, b); err != nil {
				return err
			}
			return tx.Bookings().InsertSeatLinks(ctx, []domain.BookingSeatLink{
				{BookingID: b.ID, SeatID: seat, ShowtimeID: st.ID},
			})
		})
	}

	if err := insert("user-1"); err != nil {
		t.Fatalf("first link: %v", err)
	}
	if err := insert("user-2"); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("second link err = %v, want %v", err, repository.ErrConflict)
	}

	list, err := store.Bookings().ListUserBookings(ctx, "user-2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("user-2 bookings = %d, want 0 after rollback", len(list))
	}
}

func TestListUserBookingsNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := sqlitetest.Open(t)
	st := sqlitetest.SeedShowtime(t, store, "200", []string{"A"}, 1)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i := range 3 {
		b := &domain.Booking{
			ID: uuid.New(), UserID: "user-1", ShowtimeID: st.ID,
			Total: decimal.NewFromInt(200), Status: domain.BookingPending,
			PaymentMethod: domain.PaymentDebit,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:     base,
		}
		if err := store.Bookings().InsertBooking(ctx, b); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		ids = append(ids, b.ID)
	}

	list, err := store.Bookings().ListUserBookings(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("list len = %d, want 3", len(list))
	}
	for i, b := range list {
		if b.ID != ids[2-i] {
			t.Fatalf("list[%d] = %s, want %s", i, b.ID, ids[2-i])
		}
	}
}
