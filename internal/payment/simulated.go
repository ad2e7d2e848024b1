// Package payment provides the simulated payment gateway used in place of a
// real processor.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kirinyoku/cinebook/internal/service/booking"
)

var ErrDeclined = errors.New("payment declined")

type Config struct {
	// Delay is how long a charge takes to settle.
	Delay time.Duration
	// DeclineUsers lists user ids whose charges are always declined.
	DeclineUsers []string
}

// Simulated settles every charge after Delay and returns a PAY-<n>
// reference. It honours context cancellation while waiting. A repeated
// idempotency key gets the reference of the earlier capture back.
type Simulated struct {
	cfg     Config
	decline map[string]struct{}
	seq     atomic.Int64

	mu       sync.Mutex
	captured map[string]string
}

func NewSimulated(cfg Config) *Simulated {
	decline := make(map[string]struct{}, len(cfg.DeclineUsers))
	for _, u := range cfg.DeclineUsers {
		decline[u] = struct{}{}
	}

	s := &Simulated{cfg: cfg, decline: decline, captured: make(map[string]string)}
	s.seq.Store(time.Now().UnixNano())

	return s
}

func (s *Simulated) Charge(ctx context.Context, req booking.ChargeRequest) (string, error) {
	const op = "payment.Simulated.Charge"

	if s.cfg.Delay > 0 {
		t := time.NewTimer(s.cfg.Delay)
		defer t.Stop()

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%s: %w", op, ctx.Err())
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if _, ok := s.decline[req.UserID]; ok {
		return "", fmt.Errorf("%s: %w", op, ErrDeclined)
	}

	if req.Amount.IsNegative() {
		return "", fmt.Errorf("%s: negative amount %s", op, req.Amount)
	}

	if req.IdempotencyKey == "" {
		return "PAY-" + strconv.FormatInt(s.seq.Add(1), 10), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ref, ok := s.captured[req.IdempotencyKey]; ok {
		return ref, nil
	}

	ref := "PAY-" + strconv.FormatInt(s.seq.Add(1), 10)
	s.captured[req.IdempotencyKey] = ref

	return ref, nil
}

var _ booking.Gateway = (*Simulated)(nil)
