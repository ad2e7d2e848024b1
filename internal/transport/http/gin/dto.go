package httpgin

import (
	"time"

	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/pricing"
)

type ValidateReservationRequest struct {
	SeatIDs []int64 `json:"seat_ids" binding:"required"`
	Tickets int     `json:"tickets"`
}

type CreateBookingRequest struct {
	SeatIDs       []int64 `json:"seat_ids" binding:"required"`
	Tickets       int     `json:"tickets"`
	PaymentMethod string  `json:"payment_method" binding:"required"`
}

type CreateMovieRequest struct {
	Title       string `json:"title" binding:"required"`
	DurationMin int    `json:"duration_min" binding:"required,gt=0"`
	Language    string `json:"language"`
}

type CreateTheaterRequest struct {
	Name string `json:"name" binding:"required"`
	City string `json:"city"`
}

type CreateShowtimeRequest struct {
	MovieID   int64    `json:"movie_id" binding:"required"`
	TheaterID int64    `json:"theater_id" binding:"required"`
	StartsAt  string   `json:"starts_at" binding:"required"`
	Price     string   `json:"price" binding:"required"`
	Rows      []string `json:"rows" binding:"required,min=1"`
	PerRow    int      `json:"per_row" binding:"required,gt=0"`
}

type ErrorResponse struct {
	Error   string           `json:"error"`
	Reason  string           `json:"reason,omitempty"`
	SeatIDs []int64          `json:"seat_ids,omitempty"`
	Booking *BookingResponse `json:"booking,omitempty"`
}

type ValidateReservationResponse struct {
	ShowtimeID int64   `json:"showtime_id"`
	SeatIDs    []int64 `json:"seat_ids"`
	Tickets    int     `json:"tickets"`
	Total      string  `json:"total"`
}

type BookingResponse struct {
	BookingID     string    `json:"booking_id"`
	Code          string    `json:"code"`
	ShowtimeID    int64     `json:"showtime_id"`
	SeatIDs       []int64   `json:"seat_ids"`
	Total         string    `json:"total"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method"`
	PaymentRef    string    `json:"payment_ref,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type CreateMovieResponse struct {
	MovieID int64 `json:"movie_id"`
}

type CreateTheaterResponse struct {
	TheaterID int64 `json:"theater_id"`
}

type CreateShowtimeResponse struct {
	ShowtimeID int64 `json:"showtime_id"`
	Seats      int   `json:"seats"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		BookingID:     b.ID.String(),
		Code:          b.Code(),
		ShowtimeID:    b.ShowtimeID,
		SeatIDs:       b.SeatIDs,
		Total:         pricing.Format(b.Total),
		Status:        string(b.Status),
		PaymentMethod: string(b.PaymentMethod),
		PaymentRef:    b.PaymentRef,
		CreatedAt:     b.CreatedAt,
	}
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
