package redis

import "fmt"

const ns = "cinebook:v1"

func KeyShowtime(showtimeID int64) string {
	return fmt.Sprintf("%s:showtime:%d", ns, showtimeID)
}

func KeyShowtimeAvailability(showtimeID int64) string {
	return fmt.Sprintf("%s:showtime:%d:availability", ns, showtimeID)
}

func KeyIdemBooking(showtimeID int64, userID, idemKey string) string {
	return fmt.Sprintf("%s:idem:bookings:%d:%s:%s", ns, showtimeID, userID, idemKey)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}
