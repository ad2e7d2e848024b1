package reservation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kirinyoku/cinebook/internal/repository/sqlite/sqlitetest"
	"github.com/kirinyoku/cinebook/internal/service/reservation"
)

func TestPrepareUsesLiveSeats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := sqlitetest.Open(t)
	st := sqlitetest.SeedShowtime(t, store, "200", []string{"A"}, 5)
	svc := reservation.New(store, reservation.Config{})

	res, err := svc.Prepare(ctx, st.ID, st.IDs(t, "A1", "A3"), 2)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if res.TicketCount() != 2 {
		t.Fatalf("ticket count = %d, want 2", res.TicketCount())
	}

	if err := store.Seats().MarkBooked(ctx, st.ID, st.IDs(t, "A3")); err != nil {
		t.Fatalf("mark booked: %v", err)
	}

	_, err = svc.Prepare(ctx, st.ID, st.IDs(t, "A1", "A3"), 2)
	var verr *reservation.ValidationError
	if !errors.As(err, &verr) || verr.Reason != reservation.ReasonSeatBooked {
		t.Fatalf("prepare after booking err = %v, want %s", err, reservation.ReasonSeatBooked)
	}
}

func TestPrepareUnknownShowtime(t *testing.T) {
	t.Parallel()

	store := sqlitetest.Open(t)
	svc := reservation.New(store, reservation.Config{})

	_, err := svc.Prepare(context.Background(), 404, []int64{1}, 1)
	if !errors.Is(err, reservation.ErrShowtimeNotFound) {
		t.Fatalf("err = %v, want %v", err, reservation.ErrShowtimeNotFound)
	}
}

func TestSeatMapOrdered(t *testing.T) {
	t.Parallel()

	store := sqlitetest.Open(t)
	st := sqlitetest.SeedShowtime(t, store, "200", []string{"A"}, 12)
	svc := reservation.New(store, reservation.Config{MaxTickets: 4})

	seats, err := svc.SeatMap(context.Background(), st.ID)
	if err != nil {
		t.Fatalf("seat map: %v", err)
	}
	if seats[8].Label() != "A9" || seats[9].Label() != "A10" {
		t.Fatalf("seats[8:10] = %s,%s, want A9,A10", seats[8].Label(), seats[9].Label())
	}
	if svc.MaxTickets() != 4 {
		t.Fatalf("max tickets = %d, want 4", svc.MaxTickets())
	}
}
