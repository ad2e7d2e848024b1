package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatHeld      SeatStatus = "held"
	SeatBooked    SeatStatus = "booked"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingPaid      BookingStatus = "paid"
	BookingCancelled BookingStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentCredit PaymentMethod = "credit"
	PaymentDebit  PaymentMethod = "debit"
	PaymentUPI    PaymentMethod = "upi"
)

// Valid reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCredit, PaymentDebit, PaymentUPI:
		return true
	}
	return false
}

type Movie struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	DurationMin int    `json:"duration_min"`
	Language    string `json:"language,omitempty"`
}

type Theater struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

// Showtime is a scheduled screening. It is immutable once created.
type Showtime struct {
	ID          int64           `json:"id"`
	MovieID     int64           `json:"movie_id"`
	TheaterID   int64           `json:"theater_id"`
	MovieTitle  string          `json:"movie_title,omitempty"`
	TheaterName string          `json:"theater_name,omitempty"`
	StartsAt    time.Time       `json:"starts_at"`
	Price       decimal.Decimal `json:"price"`
}

type Seat struct {
	ID         int64      `json:"id"`
	ShowtimeID int64      `json:"showtime_id"`
	Row        string     `json:"row"`
	Number     string     `json:"number"`
	Status     SeatStatus `json:"status"`
}

// Label is the human readable seat name, e.g. "A10".
func (s Seat) Label() string {
	return s.Row + s.Number
}

type SeatCounts struct {
	Available int64 `json:"available"`
	Held      int64 `json:"held"`
	Booked    int64 `json:"booked"`
	Total     int64 `json:"total"`
}

type Booking struct {
	ID            uuid.UUID       `json:"id"`
	UserID        string          `json:"user_id"`
	ShowtimeID    int64           `json:"showtime_id"`
	SeatIDs       []int64         `json:"seat_ids"`
	Total         decimal.Decimal `json:"total"`
	Status        BookingStatus   `json:"status"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	PaymentRef    string          `json:"payment_ref,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Code is the short booking reference shown to users.
func (b Booking) Code() string {
	return ShortCode(b.ID)
}

type BookingSeatLink struct {
	BookingID  uuid.UUID
	SeatID     int64
	ShowtimeID int64
}

// BookingView is the read projection of a booking with everything needed to
// render a confirmation or history entry.
type BookingView struct {
	Booking      Booking  `json:"booking"`
	Code         string   `json:"code"`
	Showtime     Showtime `json:"showtime"`
	Seats        []Seat   `json:"seats"`
	TotalDisplay string   `json:"total_display"`
}
