package domain

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// CompareSeats orders seats by row label, then by numeric seat number, so
// that A9 sorts before A10. Numbers that do not parse as integers sort after
// numeric ones, lexically.
func CompareSeats(a, b Seat) int {
	if c := cmp.Compare(a.Row, b.Row); c != 0 {
		return c
	}

	na, errA := strconv.Atoi(a.Number)
	nb, errB := strconv.Atoi(b.Number)

	switch {
	case errA == nil && errB == nil:
		if c := cmp.Compare(na, nb); c != 0 {
			return c
		}
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}

	if c := cmp.Compare(a.Number, b.Number); c != 0 {
		return c
	}

	return cmp.Compare(a.ID, b.ID)
}

// SortSeats sorts seats in place in seat-map order.
func SortSeats(seats []Seat) {
	slices.SortStableFunc(seats, CompareSeats)
}

// ShortCode returns the first eight hex characters of id, upper-cased.
func ShortCode(id uuid.UUID) string {
	s := strings.ReplaceAll(id.String(), "-", "")
	return strings.ToUpper(s[:8])
}
