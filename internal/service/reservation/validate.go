package reservation

import (
	"slices"

	"github.com/kirinyoku/cinebook/internal/domain"
)

// DefaultMaxTickets is the largest party a single booking may seat.
const DefaultMaxTickets = 6

// ValidatedReservation is a seat selection that passed every rule against a
// fresh seat snapshot. Only Validate produces non-zero values.
type ValidatedReservation struct {
	showtimeID  int64
	seatIDs     []int64
	ticketCount int
}

func (r ValidatedReservation) ShowtimeID() int64 { return r.showtimeID }

// SeatIDs returns a copy of the selected seat ids in selection order.
func (r ValidatedReservation) SeatIDs() []int64 { return slices.Clone(r.seatIDs) }

func (r ValidatedReservation) TicketCount() int { return r.ticketCount }

// Rules holds the tunable limits of seat selection.
type Rules struct {
	MaxTickets int
}

// Validate checks a selection with the default rules.
func Validate(
	showtimeID int64,
	candidates []int64,
	requiredCount int,
	current []domain.Seat,
) (ValidatedReservation, error) {
	return Rules{MaxTickets: DefaultMaxTickets}.Validate(showtimeID, candidates, requiredCount, current)
}

// Validate checks candidates against the current seats of showtimeID. The
// first failing rule wins, in this order: duplicates, unknown seats, booked
// seats, exact count. Held seats count as selectable.
//
// requiredCount outside [1, MaxTickets] is rejected with
// ReasonInvalidTicketCount before any of those rules run, so an
// out-of-range count hides a duplicate or unknown seat.
func (r Rules) Validate(
	showtimeID int64,
	candidates []int64,
	requiredCount int,
	current []domain.Seat,
) (ValidatedReservation, error) {
	maxTickets := r.MaxTickets
	if maxTickets <= 0 {
		maxTickets = DefaultMaxTickets
	}

	if requiredCount < 1 || requiredCount > maxTickets {
		return ValidatedReservation{}, &ValidationError{
			Reason: ReasonInvalidTicketCount,
			Want:   requiredCount,
		}
	}

	seen := make(map[int64]struct{}, len(candidates))
	var dups []int64
	for _, id := range candidates {
		if _, ok := seen[id]; ok {
			dups = append(dups, id)
			continue
		}
		seen[id] = struct{}{}
	}
	if len(dups) > 0 {
		return ValidatedReservation{}, &ValidationError{Reason: ReasonDuplicateSeat, SeatIDs: dups}
	}

	byID := make(map[int64]domain.Seat, len(current))
	for _, s := range current {
		if s.ShowtimeID == showtimeID {
			byID[s.ID] = s
		}
	}

	var unknown, booked []int64
	for _, id := range candidates {
		s, ok := byID[id]
		switch {
		case !ok:
			unknown = append(unknown, id)
		case s.Status == domain.SeatBooked:
			booked = append(booked, id)
		}
	}
	if len(unknown) > 0 {
		return ValidatedReservation{}, &ValidationError{Reason: ReasonUnknownSeat, SeatIDs: unknown}
	}
	if len(booked) > 0 {
		return ValidatedReservation{}, &ValidationError{Reason: ReasonSeatBooked, SeatIDs: booked}
	}

	if len(candidates) != requiredCount {
		return ValidatedReservation{}, &ValidationError{
			Reason: ReasonWrongCount,
			Want:   requiredCount,
			Got:    len(candidates),
		}
	}

	return ValidatedReservation{
		showtimeID:  showtimeID,
		seatIDs:     slices.Clone(candidates),
		ticketCount: requiredCount,
	}, nil
}
