// Package pricing computes booking totals with exact decimal arithmetic.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSeatCount = errors.New("seat count must be positive")
	ErrNegativePrice    = errors.New("unit price must not be negative")
)

// ComputeTotal returns unitPrice multiplied by seatCount.
func ComputeTotal(unitPrice decimal.Decimal, seatCount int) (decimal.Decimal, error) {
	const op = "pricing.ComputeTotal"

	if seatCount <= 0 {
		return decimal.Zero, fmt.Errorf("%s: %w", op, ErrInvalidSeatCount)
	}

	if unitPrice.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s: %w", op, ErrNegativePrice)
	}

	return unitPrice.Mul(decimal.NewFromInt(int64(seatCount))), nil
}

// Format renders an amount with two decimal places for display.
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
