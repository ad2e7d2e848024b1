// Package notify carries booking confirmations over RabbitMQ to the
// notification worker.
package notify

import "time"

// QueueBookingConfirmed is the durable queue confirmations are sent to.
const QueueBookingConfirmed = "booking.confirmed"

type BookingConfirmed struct {
	BookingID   string    `json:"booking_id"`
	Code        string    `json:"code"`
	UserID      string    `json:"user_id"`
	ShowtimeID  int64     `json:"showtime_id"`
	MovieTitle  string    `json:"movie_title"`
	TheaterName string    `json:"theater_name"`
	StartsAt    time.Time `json:"starts_at"`
	SeatLabels  []string  `json:"seat_labels"`
	Total       string    `json:"total"`
	PaymentRef  string    `json:"payment_ref"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}
