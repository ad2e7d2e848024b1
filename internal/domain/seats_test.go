package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestSortSeatsNumericWithinRow(t *testing.T) {
	t.Parallel()

	seats := []Seat{
		{ID: 1, Row: "B", Number: "1"},
		{ID: 2, Row: "A", Number: "10"},
		{ID: 3, Row: "A", Number: "9"},
		{ID: 4, Row: "A", Number: "2"},
	}

	SortSeats(seats)

	want := []string{"A2", "A9", "A10", "B1"}
	for i, s := range seats {
		if s.Label() != want[i] {
			t.Fatalf("seats[%d] = %s, want %s", i, s.Label(), want[i])
		}
	}
}

func TestSortSeatsNonNumericAfterNumeric(t *testing.T) {
	t.Parallel()

	seats := []Seat{
		{ID: 1, Row: "C", Number: "X"},
		{ID: 2, Row: "C", Number: "3"},
		{ID: 3, Row: "C", Number: "AA"},
	}

	SortSeats(seats)

	want := []string{"C3", "CAA", "CX"}
	for i, s := range seats {
		if s.Label() != want[i] {
			t.Fatalf("seats[%d] = %s, want %s", i, s.Label(), want[i])
		}
	}
}

func TestShortCode(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("3f2a9c1e-0000-4000-8000-000000000000")
	if got := ShortCode(id); got != "3F2A9C1E" {
		t.Fatalf("ShortCode = %q, want %q", got, "3F2A9C1E")
	}
}

func TestPaymentMethodValid(t *testing.T) {
	t.Parallel()

	for _, m := range []PaymentMethod{PaymentCredit, PaymentDebit, PaymentUPI} {
		if !m.Valid() {
			t.Fatalf("%q should be valid", m)
		}
	}
	if PaymentMethod("cash").Valid() {
		t.Fatal("cash should not be valid")
	}
}
