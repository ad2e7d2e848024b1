package reservation

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("invalid seat selection")
	ErrShowtimeNotFound = errors.New("showtime not found")
)

// Reason names the rule a seat selection broke.
type Reason string

const (
	ReasonInvalidTicketCount Reason = "invalid_ticket_count"
	ReasonDuplicateSeat      Reason = "duplicate_seat"
	ReasonUnknownSeat        Reason = "unknown_seat"
	ReasonSeatBooked         Reason = "seat_booked"
	ReasonWrongCount         Reason = "wrong_count"
)

// ValidationError reports the first rule a selection broke. It matches
// ErrValidation with errors.Is.
type ValidationError struct {
	Reason  Reason
	SeatIDs []int64
	Want    int
	Got     int
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonInvalidTicketCount:
		return fmt.Sprintf("ticket count %d is out of range", e.Want)
	case ReasonWrongCount:
		return fmt.Sprintf("selected %d seats, need exactly %d", e.Got, e.Want)
	case ReasonDuplicateSeat:
		return fmt.Sprintf("seats selected more than once: %v", e.SeatIDs)
	case ReasonUnknownSeat:
		return fmt.Sprintf("seats not part of this showtime: %v", e.SeatIDs)
	case ReasonSeatBooked:
		return fmt.Sprintf("seats already booked: %v", e.SeatIDs)
	}
	return string(e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
