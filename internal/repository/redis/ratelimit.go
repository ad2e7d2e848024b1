package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// slidingWindowScript records one hit per call in a sorted set scored by
// time and trims hits older than the window.
// KEYS[1] = key
// ARGV[1] = now_ms, ARGV[2] = window_ms, ARGV[3] = limit, ARGV[4] = unique member
// Returns {allowed (0|1), retry_after_ms}.
const slidingWindowScript = `
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])

redis.call('ZREMRANGEBYSCORE', KEYS[1], 0, now - window)
redis.call('ZADD', KEYS[1], 'NX', now, ARGV[4])
redis.call('PEXPIRE', KEYS[1], window)

if redis.call('ZCARD', KEYS[1]) <= tonumber(ARGV[3]) then
  return {1, 0}
end

local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
local retry = window - (now - (tonumber(oldest[2]) or now))
if retry < 0 then retry = 0 end
return {0, retry}
`

// SlidingWindowLimiter caps how many times a subject may hit a scope within
// a rolling window. A nil limiter allows everything.
type SlidingWindowLimiter struct {
	rdb    *redis.Client
	scope  string
	limit  int
	window time.Duration
	script *redis.Script
}

func NewSlidingWindowLimiter(
	rdb *redis.Client,
	scope string,
	limit int,
	window time.Duration,
) *SlidingWindowLimiter {
	if rdb == nil || limit <= 0 || window <= 0 {
		return nil
	}

	return &SlidingWindowLimiter{
		rdb:    rdb,
		scope:  scope,
		limit:  limit,
		window: window,
		script: redis.NewScript(slidingWindowScript),
	}
}

// Allow records one hit for subject and reports whether it is within the
// limit. When it is not, retryAfter says how long until the oldest hit in
// the window expires.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, subject string) (allowed bool, retryAfter time.Duration, err error) {
	const op = "redis.SlidingWindowLimiter.Allow"

	if l == nil {
		return true, 0, nil
	}

	member := make([]byte, 12)
	_, _ = rand.Read(member)

	res, err := l.script.Run(
		ctx,
		l.rdb,
		[]string{KeyRateLimit(l.scope, subject)},
		time.Now().UnixMilli(), l.window.Milliseconds(), l.limit, hex.EncodeToString(member),
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("%s: %w", op, err)
	}

	if len(res) != 2 {
		return false, 0, fmt.Errorf("%s: unexpected script result %v", op, res)
	}

	return res[0] == 1, time.Duration(res[1]) * time.Millisecond, nil
}
