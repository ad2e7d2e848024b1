package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer reads confirmations off the booking.confirmed queue and sends the
// confirmation mail for each. Mail delivery is simulated by a log line.
type Consumer struct {
	url    string
	logger *slog.Logger
}

func NewConsumer(url string, logger *slog.Logger) *Consumer {
	return &Consumer{url: url, logger: logger}
}

// Run consumes until ctx is cancelled, reconnecting with exponential backoff
// (capped at 30s) whenever the broker goes away.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second

	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Warn("notify: dial failed", "error", err, "retry_in", backoff)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}

		c.logger.Warn("notify: consume loop ended, reconnecting", "error", err)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(2 * time.Second):
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(50, 0, false); err != nil {
		c.logger.Warn("notify: set qos failed", "error", err)
	}

	if _, err := ch.QueueDeclare(QueueBookingConfirmed, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, QueueBookingConfirmed, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	c.logger.Info("notify: consuming", "queue", QueueBookingConfirmed)

	for d := range msgs {
		if err := c.Handle(ctx, d.Body); err != nil {
			c.logger.Error("notify: handle message failed", "error", err, "message_id", d.MessageId)
			// no requeue: a malformed message would loop forever
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}

	return errors.New("deliveries channel closed")
}

// Handle decodes one confirmation and sends its mail.
func (c *Consumer) Handle(_ context.Context, body []byte) error {
	var ev BookingConfirmed
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	if ev.BookingID == "" || ev.UserID == "" {
		return errors.New("confirmation without booking or user id")
	}

	c.logger.Info("confirmation email sent",
		slog.String("booking_id", ev.BookingID),
		slog.String("code", ev.Code),
		slog.String("user_id", ev.UserID),
		slog.Int64("showtime_id", ev.ShowtimeID),
		slog.String("movie", ev.MovieTitle),
		slog.String("theater", ev.TheaterName),
		slog.Time("starts_at", ev.StartsAt),
		slog.String("seats", strings.Join(ev.SeatLabels, ",")),
		slog.String("total", ev.Total),
		slog.String("payment_ref", ev.PaymentRef),
	)

	return nil
}
