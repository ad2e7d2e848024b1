package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeTotal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		price string
		count int
		want  string
	}{
		{name: "whole", price: "250", count: 3, want: "750"},
		{name: "fractional", price: "149.50", count: 2, want: "299"},
		{name: "fractional odd", price: "149.50", count: 3, want: "448.5"},
		{name: "cents", price: "0.10", count: 3, want: "0.3"},
		{name: "free", price: "0", count: 6, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ComputeTotal(decimal.RequireFromString(tt.price), tt.count)
			if err != nil {
				t.Fatalf("ComputeTotal: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("total = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestComputeTotalRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := ComputeTotal(decimal.NewFromInt(100), 0); !errors.Is(err, ErrInvalidSeatCount) {
		t.Fatalf("zero seats err = %v, want %v", err, ErrInvalidSeatCount)
	}
	if _, err := ComputeTotal(decimal.NewFromInt(100), -1); !errors.Is(err, ErrInvalidSeatCount) {
		t.Fatalf("negative seats err = %v, want %v", err, ErrInvalidSeatCount)
	}
	if _, err := ComputeTotal(decimal.NewFromInt(-1), 2); !errors.Is(err, ErrNegativePrice) {
		t.Fatalf("negative price err = %v, want %v", err, ErrNegativePrice)
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	total, _ := ComputeTotal(decimal.RequireFromString("149.50"), 3)
	if got := Format(total); got != "448.50" {
		t.Fatalf("Format = %q, want %q", got, "448.50")
	}
}
