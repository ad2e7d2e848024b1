package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	_ "github.com/kirinyoku/cinebook/docs"
	"github.com/kirinyoku/cinebook/internal/app"
	"github.com/kirinyoku/cinebook/internal/auth"
	"github.com/kirinyoku/cinebook/internal/config"
	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/notify"
	"github.com/kirinyoku/cinebook/internal/service/admin"
)

// @title Cinebook API
// @version 1.0
// @description Movie seat reservation and booking service.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := rootCmd(logger).ExecuteContext(context.Background()); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func rootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "cinebook",
		Short:         "Movie seat reservation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		serveCmd(logger),
		migrateCmd(logger),
		notifyCmd(logger),
		tokenCmd(),
		seedCmd(logger),
	)

	return root
}

func serveCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}

			application, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			return application.Run(cmd.Context())
		},
	}
}

func migrateCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}

			store, err := app.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			logger.Info("migrations applied", "storage", cfg.Storage.Driver)
			return nil
		},
	}
}

func notifyCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Consume booking confirmations and send the emails",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}
			if cfg.RabbitMQ.URL == "" {
				return fmt.Errorf("RABBITMQ_URL is required")
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return notify.NewConsumer(cfg.RabbitMQ.URL, logger).Run(ctx)
		},
	}
}

func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint a development access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}

			m, err := auth.NewManager(auth.Config{Secret: cfg.Auth.Secret, Issuer: cfg.Auth.Issuer, TTL: cfg.Auth.TTL})
			if err != nil {
				return err
			}

			tok, exp, err := m.Issue(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), tok)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", exp.Format(time.RFC3339))
			return nil
		},
	}
}

func seedCmd(logger *slog.Logger) *cobra.Command {
	var (
		title   string
		theater string
		price   string
		rows    []string
		perRow  int
		startIn time.Duration
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo movie, theater and showtime with a seat grid",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}

			p, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("invalid --price: %w", err)
			}

			ctx := cmd.Context()
			store, err := app.OpenStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			svc := admin.New(store)

			movieID, err := svc.CreateMovie(ctx, domain.Movie{Title: title, DurationMin: 150, Language: "en"})
			if err != nil {
				return err
			}
			theaterID, err := svc.CreateTheater(ctx, domain.Theater{Name: theater, City: "Bengaluru"})
			if err != nil {
				return err
			}
			showtimeID, err := svc.CreateShowtime(ctx, admin.ShowtimeInput{
				MovieID:   movieID,
				TheaterID: theaterID,
				StartsAt:  time.Now().Add(startIn).Truncate(time.Minute),
				Price:     p,
				Rows:      rows,
				PerRow:    perRow,
			})
			if err != nil {
				return err
			}

			logger.Info("seeded showtime", "showtime_id", showtimeID, "movie_id", movieID, "theater_id", theaterID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "Interstellar", "movie title")
	cmd.Flags().StringVar(&theater, "theater", "Cinebook Central", "theater name")
	cmd.Flags().StringVar(&price, "price", "200", "ticket price")
	cmd.Flags().StringSliceVar(&rows, "rows", []string{"A", "B", "C", "D", "E"}, "row labels")
	cmd.Flags().IntVar(&perRow, "per-row", 10, "seats per row")
	cmd.Flags().DurationVar(&startIn, "starts-in", 24*time.Hour, "time until the show starts")

	return cmd
}
