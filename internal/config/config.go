package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	Auth      AuthConfig
	Booking   BookingConfig
	Payment   PaymentConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"localhost"`
	Port int    `env:"SERVER_PORT" envDefault:"8080"`
}

type StorageConfig struct {
	Driver     string `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath string `env:"SQLITE_PATH"    envDefault:"cinebook.db"`
}

type PostgresConfig struct {
	User     string `env:"POSTGRES_USER"`
	Password string `env:"POSTGRES_PASSWORD"`
	Name     string `env:"POSTGRES_DB"`
	Host     string `env:"POSTGRES_HOST"     envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT"     envDefault:"5432"`
	SSLMode  string `env:"POSTGRES_SSLMODE"  envDefault:"disable"`
	MaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
}

// DSN builds a postgres:// connection string.
func (c PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

type RedisConfig struct {
	// Addr empty disables caching, idempotency and rate limiting.
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type RabbitMQConfig struct {
	// URL empty disables confirmation messages.
	URL string `env:"RABBITMQ_URL"`
}

type AuthConfig struct {
	Secret string        `env:"JWT_SECRET"`
	Issuer string        `env:"JWT_ISSUER" envDefault:"cinebook"`
	TTL    time.Duration `env:"JWT_TTL"    envDefault:"24h"`
	// AdminUsers may call the /admin endpoints.
	AdminUsers []string `env:"ADMIN_USERS" envSeparator:","`
}

type BookingConfig struct {
	MaxTickets       int           `env:"BOOKING_MAX_TICKETS"       envDefault:"6"`
	PaymentTimeout   time.Duration `env:"BOOKING_PAYMENT_TIMEOUT"   envDefault:"10s"`
	RateLimit        int           `env:"BOOKING_RATE_LIMIT"        envDefault:"10"`
	RateWindow       time.Duration `env:"BOOKING_RATE_WINDOW"       envDefault:"1m"`
	IdempotencyTTL   time.Duration `env:"BOOKING_IDEMPOTENCY_TTL"   envDefault:"2h"`
	AvailabilityTTL  time.Duration `env:"BOOKING_AVAILABILITY_TTL"  envDefault:"15s"`
	ShowtimeCacheTTL time.Duration `env:"BOOKING_SHOWTIME_TTL"      envDefault:"10m"`
}

type PaymentConfig struct {
	Delay        time.Duration `env:"PAYMENT_DELAY"         envDefault:"200ms"`
	DeclineUsers []string      `env:"PAYMENT_DECLINE_USERS" envSeparator:","`
}

type TelemetryConfig struct {
	// OTLPEndpoint empty disables trace export.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"cinebook"`
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("missing SQLITE_PATH")
		}
	case DriverPostgres:
		if c.Postgres.User == "" {
			return fmt.Errorf("missing POSTGRES_USER")
		}
		if c.Postgres.Password == "" {
			return fmt.Errorf("missing POSTGRES_PASSWORD")
		}
		if c.Postgres.Name == "" {
			return fmt.Errorf("missing POSTGRES_DB")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.Auth.Secret == "" {
		return fmt.Errorf("missing JWT_SECRET")
	}

	if c.Booking.MaxTickets < 1 {
		return fmt.Errorf("invalid BOOKING_MAX_TICKETS %d", c.Booking.MaxTickets)
	}

	return nil
}
