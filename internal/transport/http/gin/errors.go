package httpgin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/cinebook/internal/service/admin"
	"github.com/kirinyoku/cinebook/internal/service/booking"
	"github.com/kirinyoku/cinebook/internal/service/query"
	"github.com/kirinyoku/cinebook/internal/service/reservation"
)

const msgGeneric = "something went wrong, please try again"

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// respondErr maps service errors to a status and a message the user can act
// on. Anything unrecognised is recorded on the context for the access log
// and answered with a generic 500.
func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var (
		verr *reservation.ValidationError
		serr *booking.SeatsUnavailableError
	)

	switch {
	// reservation engine
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "please change your seat selection: " + verr.Error(),
			Reason:  string(verr.Reason),
			SeatIDs: verr.SeatIDs,
		})
		return
	case errors.Is(err, reservation.ErrShowtimeNotFound),
		errors.Is(err, booking.ErrShowtimeNotFound),
		errors.Is(err, query.ErrShowtimeNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "showtime not found"})
		return
	// booking coordinator
	case errors.As(err, &serr):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "some seats were just booked by someone else, please choose different seats",
			SeatIDs: serr.SeatIDs,
		})
		return
	case errors.Is(err, booking.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "please sign in to continue"})
		return
	case errors.Is(err, booking.ErrInvalidPaymentMethod):
		badRequest(c, "payment method must be credit, debit or upi")
		return
	case errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, query.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
		return
	case errors.Is(err, booking.ErrAlreadyPaid):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "booking is already paid"})
		return
	case errors.Is(err, booking.ErrPaymentInProgress):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "a payment for this booking is already in progress"})
		return
	case errors.Is(err, booking.ErrNotPayable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "booking can no longer be paid"})
		return
	// admin service
	case errors.Is(err, admin.ErrInvalidInput):
		badRequest(c, err.Error())
		return
	case errors.Is(err, admin.ErrTheaterConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "theater conflict"})
		return
	case errors.Is(err, admin.ErrShowtimeConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "showtime conflict"})
		return
	case errors.Is(err, admin.ErrMovieOrTheater):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "movie or theater does not exist"})
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgGeneric})
}

// paymentErrResponse builds the answer for a booking that committed but did not get paid.
// The booking is included so the client can retry payment.
func paymentErrResponse(c *gin.Context, perr *booking.PaymentError, b BookingResponse) (int, ErrorResponse) {
	_ = c.Error(perr)

	if errors.Is(perr, booking.ErrPaymentIndeterminate) {
		return http.StatusAccepted, ErrorResponse{
			Error:   "payment is still being confirmed, check your booking before paying again",
			Booking: &b,
		}
	}

	return http.StatusPaymentRequired, ErrorResponse{
		Error:   "payment failed, your seats are booked and you can retry payment",
		Booking: &b,
	}
}
