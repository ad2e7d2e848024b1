// Package repotest seeds showtimes through the repository contracts, for
// tests against any backend.
package repotest

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/repository"
	"github.com/shopspring/decimal"
)

// Showtime is a seeded showtime and its seat ids keyed by label.
type Showtime struct {
	ID    int64
	Seats map[string]int64
}

// IDs returns the seat ids for the given labels, in order.
func (s Showtime) IDs(t *testing.T, labels ...string) []int64 {
	t.Helper()

	out := make([]int64, 0, len(labels))
	for _, l := range labels {
		id, ok := s.Seats[l]
		if !ok {
			t.Fatalf("seat %s not seeded", l)
		}
		out = append(out, id)
	}

	return out
}

// SeedShowtime creates a movie, a theater and one showtime priced at price
// with perRow seats in each of rows.
func SeedShowtime(t *testing.T, store repository.Store, price string, rows []string, perRow int) Showtime {
	t.Helper()

	ctx := context.Background()
	admin := store.Admin()

	movieID, err := admin.CreateMovie(ctx, domain.Movie{Title: "Interstellar", DurationMin: 169})
	if err != nil {
		t.Fatalf("create movie: %v", err)
	}

	theaterID, err := admin.CreateTheater(ctx, domain.Theater{
		Name: "Odeon " + strconv.FormatInt(time.Now().UnixNano(), 36),
		City: "Bengaluru",
	})
	if err != nil {
		t.Fatalf("create theater: %v", err)
	}

	showtimeID, err := admin.CreateShowtime(ctx, domain.Showtime{
		MovieID:   movieID,
		TheaterID: theaterID,
		StartsAt:  time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC),
		Price:     decimal.RequireFromString(price),
	})
	if err != nil {
		t.Fatalf("create showtime: %v", err)
	}

	var seats []domain.Seat
	for _, row := range rows {
		for n := 1; n <= perRow; n++ {
			seats = append(seats, domain.Seat{Row: row, Number: strconv.Itoa(n)})
		}
	}

	if err := admin.BatchCreateSeats(ctx, showtimeID, seats); err != nil {
		t.Fatalf("create seats: %v", err)
	}

	listed, err := store.Seats().ListSeats(ctx, showtimeID)
	if err != nil {
		t.Fatalf("list seats: %v", err)
	}

	out := Showtime{ID: showtimeID, Seats: make(map[string]int64, len(listed))}
	for _, s := range listed {
		out.Seats[s.Label()] = s.ID
	}

	return out
}
