package booking

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrUnauthenticated      = errors.New("user is not signed in")
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
	ErrSeatsUnavailable     = errors.New("some seats are no longer available")
	ErrShowtimeNotFound     = errors.New("showtime not found")
	ErrPaymentFailed        = errors.New("payment failed")
	ErrPaymentIndeterminate = errors.New("payment outcome unknown")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrAlreadyPaid          = errors.New("booking already paid")
	ErrNotPayable           = errors.New("booking cannot be paid")
	ErrPaymentInProgress    = errors.New("payment already in progress")
	ErrStorage              = errors.New("storage failure")
)

// SeatsUnavailableError lists the seats that were taken between selection
// and commit. It matches ErrSeatsUnavailable.
type SeatsUnavailableError struct {
	SeatIDs []int64
}

func (e *SeatsUnavailableError) Error() string {
	return fmt.Sprintf("some or all seats are unavailable: %v", e.SeatIDs)
}

func (e *SeatsUnavailableError) Is(target error) bool {
	return target == ErrSeatsUnavailable
}

// PaymentError is returned alongside a committed booking whose payment did
// not go through. Kind is ErrPaymentFailed or ErrPaymentIndeterminate; the
// seats stay booked and the booking stays pending.
type PaymentError struct {
	BookingID uuid.UUID
	Kind      error
	Cause     error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("booking %s: %v: %v", e.BookingID, e.Kind, e.Cause)
}

func (e *PaymentError) Unwrap() []error {
	return []error{e.Kind, e.Cause}
}
