package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idemLock      = "LOCK"
	idemResPrefix = "RES:"
)

// IdempotencyStore remembers the response of a request keyed by the
// client's Idempotency-Key. A key is first locked, then replaced by the
// stored result.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	if rdb == nil {
		return nil
	}
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

func (s *IdempotencyStore) AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, key, idemLock, lockTTL).Result()
}

type storedResult struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// SaveResult stores status and payload under key for the store's TTL.
func (s *IdempotencyStore) SaveResult(ctx context.Context, key string, status int, jsonPayload []byte) error {
	b, err := json.Marshal(storedResult{Status: status, Body: jsonPayload})
	if err != nil {
		return err
	}

	return s.rdb.Set(ctx, key, idemResPrefix+string(b), s.ttl).Err()
}

// GetResult returns a previously saved status and payload. ok is false
// while the key is only locked.
func (s *IdempotencyStore) GetResult(ctx context.Context, key string) (status int, payload []byte, ok bool, err error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil, false, nil
	}
	if err != nil {
		return 0, nil, false, err
	}

	rest, found := strings.CutPrefix(v, idemResPrefix)
	if !found {
		return 0, nil, false, nil
	}

	var res storedResult
	if err := json.Unmarshal([]byte(rest), &res); err != nil {
		return 0, nil, false, err
	}

	return res.Status, res.Body, true, nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
