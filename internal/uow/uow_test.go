package uow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kirinyoku/cinebook/internal/repository"
	"github.com/kirinyoku/cinebook/internal/repository/sqlite/sqlitetest"
	"github.com/kirinyoku/cinebook/internal/uow"
)

func TestDoRunsHooksAfterCommit(t *testing.T) {
	t.Parallel()

	store := sqlitetest.Open(t)
	st := sqlitetest.SeedShowtime(t, store, "100", []string{"A"}, 2)
	u := uow.NewUoW(store)

	var order []string
	err := u.Do(context.Background(), func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		after(func(context.Context) { order = append(order, "first") })
		after(func(context.Context) { order = append(order, "second") })
		return tx.Seats().MarkBooked(ctx, st.ID, st.IDs(t, "A1"))
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("hooks = %v, want [first second]", order)
	}
}

func TestDoDropsHooksOnRollback(t *testing.T) {
	t.Parallel()

	store := sqlitetest.Open(t)
	st := sqlitetest.SeedShowtime(t, store, "100", []string{"A"}, 2)
	u := uow.NewUoW(store)
	boom := errors.New("boom")

	ran := false
	err := u.Do(context.Background(), func(ctx context.Context, tx repository.Repos, after func(uow.AfterCommit)) error {
		after(func(context.Context) { ran = true })
		if err := tx.Seats().MarkBooked(ctx, st.ID, st.IDs(t, "A1")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("do err = %v, want %v", err, boom)
	}
	if ran {
		t.Fatal("hook ran after rollback")
	}

	counts, err := store.Seats().CountsByStatus(context.Background(), st.ID)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts.Booked != 0 {
		t.Fatalf("booked = %d, want 0 after rollback", counts.Booked)
	}
}
