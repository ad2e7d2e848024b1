package service

import (
	"log/slog"

	"github.com/kirinyoku/cinebook/internal/repository"
	redis "github.com/kirinyoku/cinebook/internal/repository/redis"
	"github.com/kirinyoku/cinebook/internal/service/admin"
	"github.com/kirinyoku/cinebook/internal/service/booking"
	"github.com/kirinyoku/cinebook/internal/service/query"
	"github.com/kirinyoku/cinebook/internal/service/reservation"
)

type Services struct {
	Reservation *reservation.Service
	Booking     *booking.Coordinator
	Query       *query.Service
	Admin       *admin.Service
}

type Config struct {
	Reservation reservation.Config
	Booking     booking.Config
	Query       query.Config
}

func NewServices(
	store repository.Store,
	cache *redis.Cache,
	gateway booking.Gateway,
	notifier booking.Notifier,
	logger *slog.Logger,
	cfg Config,
) *Services {
	return &Services{
		Reservation: reservation.New(store, cfg.Reservation),
		Booking:     booking.New(store, cache, gateway, notifier, logger, cfg.Booking),
		Query:       query.New(store, cache, cfg.Query),
		Admin:       admin.New(store),
	}
}
