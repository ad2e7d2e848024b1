package httpgin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/cinebook/internal/auth"
	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/pricing"
	redisrepo "github.com/kirinyoku/cinebook/internal/repository/redis"
	"github.com/kirinyoku/cinebook/internal/service"
	"github.com/kirinyoku/cinebook/internal/service/admin"
	"github.com/kirinyoku/cinebook/internal/service/booking"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// idemLockTTL bounds how long a booking request may hold its idempotency key.
const idemLockTTL = 60 * time.Second

// Options carries the optional collaborators of the router. Nil stores and
// limiters disable their feature.
type Options struct {
	Auth        *auth.Manager
	Idempotency *redisrepo.IdempotencyStore
	Limiter     *redisrepo.SlidingWindowLimiter
	AdminUsers  []string
}

func NewRouter(
	svcs *service.Services,
	opts Options,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public API
	r.GET("/showtimes/:id", handleGetShowtime(svcs))
	r.GET("/showtimes/:id/seats", handleSeatMap(svcs))
	r.GET("/showtimes/:id/availability", handleGetAvailability(svcs))

	// Signed-in API
	user := r.Group("", Auth(opts.Auth))
	{
		user.POST("/showtimes/:id/reservations/validate", handleValidateReservation(svcs))
		user.POST("/showtimes/:id/bookings", handleCreateBooking(svcs, opts.Idempotency, opts.Limiter))
		user.POST("/bookings/:id/payment", handleRetryPayment(svcs))
		user.GET("/bookings/:id", handleGetBooking(svcs))
		user.GET("/me/bookings", handleListMyBookings(svcs))
	}

	// Admin-API
	adm := r.Group("/admin", Auth(opts.Auth), AdminOnly(opts.AdminUsers))
	{
		adm.POST("/movies", handleCreateMovie(svcs))
		adm.POST("/theaters", handleCreateTheater(svcs))
		adm.POST("/showtimes", handleCreateShowtime(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Get showtime
// @Param    id  path  int  true  "Showtime ID"
// @Success  200  {object}  domain.Showtime
// @Failure  404  {object}  ErrorResponse
// @Router   /showtimes/{id} [get]
func handleGetShowtime(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		showtimeID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		sh, err := svcs.Query.Showtime(c.Request.Context(), showtimeID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, sh, "public, max-age=60", true)
	}
}

// @Summary  Get seat map
// @Param    id  path  int  true  "Showtime ID"
// @Success  200  {array}   domain.Seat
// @Failure  404  {object}  ErrorResponse
// @Router   /showtimes/{id}/seats [get]
func handleSeatMap(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		showtimeID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		seats, err := svcs.Reservation.SeatMap(c.Request.Context(), showtimeID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, seats, "no-cache", false)
	}
}

// @Summary  Get availability counters
// @Param    id  path  int  true  "Showtime ID"
// @Success  200  {object}  domain.SeatCounts
// @Failure  404  {object}  ErrorResponse
// @Router   /showtimes/{id}/availability [get]
func handleGetAvailability(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		showtimeID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		cnt, err := svcs.Query.Availability(c.Request.Context(), showtimeID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, cnt, "public, max-age=15", true)
	}
}

// @Summary  Validate a seat selection
// @Security BearerAuth
// @Param    id  path  int  true  "Showtime ID"
// @Param    req body  ValidateReservationRequest true "payload"
// @Success  200 {object} ValidateReservationResponse
// @Failure  422 {object} ErrorResponse "invalid selection"
// @Router   /showtimes/{id}/reservations/validate [post]
func handleValidateReservation(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		showtimeID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req ValidateReservationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		ctx := c.Request.Context()
		res, err := svcs.Reservation.Prepare(ctx, showtimeID, req.SeatIDs, req.Tickets)
		if err != nil {
			respondErr(c, err)
			return
		}

		sh, err := svcs.Query.Showtime(ctx, showtimeID)
		if err != nil {
			respondErr(c, err)
			return
		}
		total, err := pricing.ComputeTotal(sh.Price, res.TicketCount())
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, ValidateReservationResponse{
			ShowtimeID: res.ShowtimeID(),
			SeatIDs:    res.SeatIDs(),
			Tickets:    res.TicketCount(),
			Total:      pricing.Format(total),
		})
	}
}

// @Summary  Book and pay for seats (idempotent)
// @Security BearerAuth
// @Param    id  path  int  true  "Showtime ID"
// @Param    req body  CreateBookingRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} BookingResponse
// @Success  202 {object} ErrorResponse "payment outcome unknown"
// @Failure  402 {object} ErrorResponse "payment failed, booking kept"
// @Failure  409 {object} ErrorResponse "seats unavailable / idem in progress"
// @Failure  422 {object} ErrorResponse "invalid selection"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /showtimes/{id}/bookings [post]
func handleCreateBooking(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	limiter *redisrepo.SlidingWindowLimiter,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		showtimeID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		ctx := c.Request.Context()
		userID := auth.UserID(ctx)

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemBooking(showtimeID, userID, idemKey)

			if replayIdem(c, idem, idemStorageKey, idemKey) {
				return
			}

			locked, err := idem.AcquireLock(ctx, idemStorageKey, idemLockTTL)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if replayIdem(c, idem, idemStorageKey, idemKey) {
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
				return
			}
		}

		release := func() {
			if idemStorageKey != "" {
				_ = idem.Release(context.WithoutCancel(ctx), idemStorageKey)
			}
		}

		allowed, retryAfter, err := limiter.Allow(ctx, userID)
		if err != nil {
			_ = c.Error(err)
		} else if !allowed {
			release()
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second).Seconds())))
			c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many booking attempts, please wait"})
			return
		}

		res, err := svcs.Reservation.Prepare(ctx, showtimeID, req.SeatIDs, req.Tickets)
		if err != nil {
			release()
			respondErr(c, err)
			return
		}

		b, err := svcs.Booking.Commit(ctx, userID, res, domain.PaymentMethod(req.PaymentMethod))

		var (
			status int
			body   any
			perr   *booking.PaymentError
		)
		switch {
		case err == nil:
			status, body = http.StatusCreated, toBookingResponse(b)
		case errors.As(err, &perr) && b != nil:
			status, body = paymentErrResponse(c, perr, toBookingResponse(b))
		default:
			release()
			respondErr(c, err)
			return
		}

		// the booking exists from here on, so the answer is kept for replays
		if idemStorageKey != "" {
			saveIdem(c, idem, idemStorageKey, status, body)
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(status, body)
	}
}

// saveIdem keeps the answer for replays. A failed save is recorded on the
// context so the logging middleware reports it; the response still goes out.
func saveIdem(c *gin.Context, idem *redisrepo.IdempotencyStore, storageKey string, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		_ = c.Error(fmt.Errorf("idempotency: encode result: %w", err))
		return
	}

	if err := idem.SaveResult(context.WithoutCancel(c.Request.Context()), storageKey, status, payload); err != nil {
		_ = c.Error(fmt.Errorf("idempotency: save result: %w", err))
	}
}

func replayIdem(c *gin.Context, idem *redisrepo.IdempotencyStore, storageKey, idemKey string) bool {
	status, payload, ok, err := idem.GetResult(c.Request.Context(), storageKey)
	if err != nil || !ok {
		return false
	}
	c.Header("Idempotency-Key", idemKey)
	c.Data(status, "application/json; charset=utf-8", payload)
	return true
}

// @Summary  Retry payment of a pending booking
// @Security BearerAuth
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {object} BookingResponse
// @Success  202 {object} ErrorResponse "payment outcome unknown"
// @Failure  402 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "already paid or payment in progress"
// @Router   /bookings/{id}/payment [post]
func handleRetryPayment(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		b, err := svcs.Booking.RetryPayment(c.Request.Context(), auth.UserID(c.Request.Context()), bookingID)

		var perr *booking.PaymentError
		switch {
		case err == nil:
			c.JSON(http.StatusOK, toBookingResponse(b))
		case errors.As(err, &perr) && b != nil:
			c.JSON(paymentErrResponse(c, perr, toBookingResponse(b)))
		default:
			respondErr(c, err)
		}
	}
}

// @Summary  Get booking
// @Security BearerAuth
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {object} domain.BookingView
// @Failure  404 {object} ErrorResponse
// @Router   /bookings/{id} [get]
func handleGetBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		v, err := svcs.Query.BookingView(c.Request.Context(), auth.UserID(c.Request.Context()), bookingID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}

// @Summary  List my bookings, newest first
// @Security BearerAuth
// @Success  200 {array} domain.BookingView
// @Router   /me/bookings [get]
func handleListMyBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Query.UserBookings(c.Request.Context(), auth.UserID(c.Request.Context()))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// @Summary  Create movie
// @Security BearerAuth
// @Param    req body  CreateMovieRequest true "payload"
// @Success  201 {object} CreateMovieResponse
// @Router   /admin/movies [post]
func handleCreateMovie(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateMovieRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		id, err := svcs.Admin.CreateMovie(c.Request.Context(), domain.Movie{
			Title:       req.Title,
			DurationMin: req.DurationMin,
			Language:    req.Language,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreateMovieResponse{MovieID: id})
	}
}

// @Summary  Create theater
// @Security BearerAuth
// @Param    req body  CreateTheaterRequest true "payload"
// @Success  201 {object} CreateTheaterResponse
// @Failure  409 {object} ErrorResponse
// @Router   /admin/theaters [post]
func handleCreateTheater(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTheaterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		id, err := svcs.Admin.CreateTheater(c.Request.Context(), domain.Theater{Name: req.Name, City: req.City})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreateTheaterResponse{TheaterID: id})
	}
}

// @Summary  Create showtime and provision its seat grid
// @Security BearerAuth
// @Param    req body  CreateShowtimeRequest true "payload"
// @Success  201 {object} CreateShowtimeResponse
// @Failure  404 {object} ErrorResponse "movie or theater missing"
// @Failure  409 {object} ErrorResponse
// @Router   /admin/showtimes [post]
func handleCreateShowtime(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateShowtimeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		starts, err := parseRFC3339(req.StartsAt)
		if err != nil {
			badRequest(c, "invalid starts_at (RFC3339)")
			return
		}
		price, err := decimal.NewFromString(req.Price)
		if err != nil {
			badRequest(c, "invalid price")
			return
		}
		id, err := svcs.Admin.CreateShowtime(c.Request.Context(), admin.ShowtimeInput{
			MovieID:   req.MovieID,
			TheaterID: req.TheaterID,
			StartsAt:  starts,
			Price:     price,
			Rows:      req.Rows,
			PerRow:    req.PerRow,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreateShowtimeResponse{ShowtimeID: id, Seats: len(req.Rows) * req.PerRow})
	}
}

// --- Helpers ---

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	v, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return v, true
}
