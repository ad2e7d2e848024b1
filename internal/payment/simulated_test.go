package payment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/service/booking"
	"github.com/shopspring/decimal"
)

func TestChargeReturnsUniqueRefs(t *testing.T) {
	t.Parallel()

	gw := NewSimulated(Config{})
	req := booking.ChargeRequest{UserID: "user-1", Amount: decimal.NewFromInt(400), Method: domain.PaymentUPI}

	a, err := gw.Charge(context.Background(), req)
	if err != nil {
		t.Fatalf("charge: %v", err)
	}
	b, err := gw.Charge(context.Background(), req)
	if err != nil {
		t.Fatalf("charge: %v", err)
	}

	if !strings.HasPrefix(a, "PAY-") || a == b {
		t.Fatalf("refs = %q, %q; want distinct PAY- refs", a, b)
	}
}

func TestChargeDeclinesConfiguredUsers(t *testing.T) {
	t.Parallel()

	gw := NewSimulated(Config{DeclineUsers: []string{"broke"}})

	_, err := gw.Charge(context.Background(), booking.ChargeRequest{UserID: "broke", Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, ErrDeclined) {
		t.Fatalf("err = %v, want %v", err, ErrDeclined)
	}
}

func TestChargeHonoursDeadline(t *testing.T) {
	t.Parallel()

	gw := NewSimulated(Config{Delay: time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := gw.Charge(ctx, booking.ChargeRequest{UserID: "user-1", Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want %v", err, context.DeadlineExceeded)
	}
}

func TestChargeReusesRefForSameKey(t *testing.T) {
	t.Parallel()

	gw := NewSimulated(Config{})
	req := booking.ChargeRequest{IdempotencyKey: "booking-1", UserID: "user-1", Amount: decimal.NewFromInt(200)}

	first, err := gw.Charge(context.Background(), req)
	if err != nil {
		t.Fatalf("charge: %v", err)
	}
	again, err := gw.Charge(context.Background(), req)
	if err != nil {
		t.Fatalf("charge again: %v", err)
	}
	if first != again {
		t.Fatalf("refs = %q, %q; want the same capture", first, again)
	}

	req.IdempotencyKey = "booking-2"
	other, err := gw.Charge(context.Background(), req)
	if err != nil {
		t.Fatalf("charge other: %v", err)
	}
	if other == first {
		t.Fatalf("distinct keys share ref %q", other)
	}
}
