package redis

import (
	"context"
	"errors"
	"testing"
)

func TestGetOrSetJSONWithoutRedisCallsLoader(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}

	for _, c := range []*Cache{nil, New(nil)} {
		got, err := GetOrSetJSON(ctx, c, KeyShowtime(1), 0, loader)
		if err != nil {
			t.Fatalf("GetOrSetJSON: %v", err)
		}
		if got != 42 {
			t.Fatalf("value = %d, want 42", got)
		}
	}

	if calls != 2 {
		t.Fatalf("loader calls = %d, want 2", calls)
	}
}

func TestGetOrSetJSONPropagatesLoaderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := GetOrSetJSON(context.Background(), nil, "k", 0, func(context.Context) (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestNilCacheIsNoop(t *testing.T) {
	t.Parallel()

	var c *Cache
	if err := c.InvalidateAvailability(context.Background(), 7); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok, err := c.GetString(context.Background(), "k"); ok || err != nil {
		t.Fatalf("GetString = %v, %v; want miss", ok, err)
	}
}

func TestNilLimiterAllows(t *testing.T) {
	t.Parallel()

	l := NewSlidingWindowLimiter(nil, "bookings", 10, 0)
	ok, retry, err := l.Allow(context.Background(), "user-1")
	if err != nil || !ok || retry != 0 {
		t.Fatalf("Allow = %v, %v, %v; want true, 0, nil", ok, retry, err)
	}
}

func TestKeys(t *testing.T) {
	t.Parallel()

	if got, want := KeyShowtimeAvailability(9), "cinebook:v1:showtime:9:availability"; got != want {
		t.Fatalf("KeyShowtimeAvailability = %q, want %q", got, want)
	}
	if got, want := KeyIdemBooking(9, "u1", "abc"), "cinebook:v1:idem:bookings:9:u1:abc"; got != want {
		t.Fatalf("KeyIdemBooking = %q, want %q", got, want)
	}
}
