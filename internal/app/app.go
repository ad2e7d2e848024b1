package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirinyoku/cinebook/internal/auth"
	"github.com/kirinyoku/cinebook/internal/config"
	"github.com/kirinyoku/cinebook/internal/notify"
	"github.com/kirinyoku/cinebook/internal/payment"
	"github.com/kirinyoku/cinebook/internal/postgres"
	"github.com/kirinyoku/cinebook/internal/redis"
	"github.com/kirinyoku/cinebook/internal/repository"
	postgresrepo "github.com/kirinyoku/cinebook/internal/repository/postgres"
	pgmigrations "github.com/kirinyoku/cinebook/internal/repository/postgres/migrations"
	redisrepo "github.com/kirinyoku/cinebook/internal/repository/redis"
	sqliterepo "github.com/kirinyoku/cinebook/internal/repository/sqlite"
	sqlitemigrations "github.com/kirinyoku/cinebook/internal/repository/sqlite/migrations"
	"github.com/kirinyoku/cinebook/internal/service"
	"github.com/kirinyoku/cinebook/internal/service/booking"
	"github.com/kirinyoku/cinebook/internal/service/query"
	"github.com/kirinyoku/cinebook/internal/service/reservation"
	"github.com/kirinyoku/cinebook/internal/sqlite"
	"github.com/kirinyoku/cinebook/internal/telemetry"
	httpgin "github.com/kirinyoku/cinebook/internal/transport/http/gin"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	closers    []func(context.Context) error
}

// OpenStore opens the configured storage backend and applies pending
// migrations.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	const op = "app.OpenStore"

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := postgres.New(ctx, postgres.Config{
			DSN:      cfg.Postgres.DSN(),
			MaxConns: cfg.Postgres.MaxConns,
		}, pgmigrations.FS)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return postgresrepo.NewStore(pool), nil

	case config.DriverSQLite:
		db, err := sqlite.New(ctx, sqlite.Config{Path: cfg.Storage.SQLitePath}, sqlitemigrations.FS)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return sqliterepo.NewStore(db), nil
	}

	return nil, fmt.Errorf("%s: unknown storage driver %q", op, cfg.Storage.Driver)
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	// Initialize dependencies
	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	a.closers = append(a.closers, shutdownTracing)

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return store.Close() })

	rdb, err := redis.New(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}
	if rdb == nil {
		logger.Warn("REDIS_ADDR not set: caching, idempotency and rate limiting are off")
	} else {
		a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
	}

	am, err := auth.NewManager(auth.Config{Secret: cfg.Auth.Secret, Issuer: cfg.Auth.Issuer, TTL: cfg.Auth.TTL})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	// booking.Notifier stays a nil interface when messaging is off
	var notifier booking.Notifier
	if cfg.RabbitMQ.URL != "" {
		pub := notify.NewPublisher(cfg.RabbitMQ.URL)
		notifier = pub
		a.closers = append(a.closers, func(context.Context) error { return pub.Close() })
	} else {
		logger.Warn("RABBITMQ_URL not set: booking confirmations are not sent")
	}

	// Initialize repositories
	cache := redisrepo.New(rdb)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, cfg.Booking.IdempotencyTTL)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, "bookings", cfg.Booking.RateLimit, cfg.Booking.RateWindow)

	// Initialize services
	gateway := payment.NewSimulated(payment.Config{
		Delay:        cfg.Payment.Delay,
		DeclineUsers: cfg.Payment.DeclineUsers,
	})

	services := service.NewServices(store, cache, gateway, notifier, logger, service.Config{
		Reservation: reservation.Config{MaxTickets: cfg.Booking.MaxTickets},
		Booking:     booking.Config{PaymentTimeout: cfg.Booking.PaymentTimeout},
		Query: query.Config{
			ShowtimeTTL:     cfg.Booking.ShowtimeCacheTTL,
			AvailabilityTTL: cfg.Booking.AvailabilityTTL,
		},
	})

	// Initialize Gin router
	router := httpgin.NewRouter(services, httpgin.Options{
		Auth:        am,
		Idempotency: idempotencyStore,
		Limiter:     limiter,
		AdminUsers:  cfg.Auth.AdminUsers,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port,
			"storage", a.cfg.Storage.Driver)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

// close releases resources in reverse order of acquisition.
func (a *App) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("close resource", "error", err)
		}
	}
	a.closers = nil
}
