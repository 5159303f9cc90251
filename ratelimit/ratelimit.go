// Package ratelimit implements a per-chat fixed-window request limiter
// backed by the shared key-value store.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"payoutbot/core/logger"

	"log/slog"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "rate_limit:"

// Limiter counts requests per chat over a fixed window.
type Limiter struct {
	rdb         *redis.Client
	maxRequests int64
	window      time.Duration
}

// New creates a limiter allowing maxRequests per window for each chat.
func New(rdb *redis.Client, maxRequests int, window time.Duration) *Limiter {
	if maxRequests <= 0 {
		maxRequests = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		rdb:         rdb,
		maxRequests: int64(maxRequests),
		window:      window,
	}
}

func rateKey(chatID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, chatID)
}

// CheckAndIncrement counts this request and reports whether the chat is over
// its budget. The window is armed when the first request of a window lands,
// so the counter and its expiry stay aligned. The request that crosses the
// budget is the first one rejected.
func (l *Limiter) CheckAndIncrement(ctx context.Context, chatID int64) (bool, time.Duration, error) {
	key := rateKey(chatID)

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit: incr chat %d: %w", chatID, err)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("ratelimit: expire chat %d: %w", chatID, err)
		}
	}

	limited := count > l.maxRequests
	if !limited {
		return false, 0, nil
	}

	retryAfter := l.window
	if ttl, err := l.rdb.TTL(ctx, key).Result(); err == nil && ttl > 0 {
		retryAfter = ttl
	}

	logger.Debug(ctx, "store", "rate_limit.hit",
		slog.Int64("chat_id", chatID),
		slog.Int64("count", count),
		slog.Duration("retry_after", retryAfter),
	)
	return true, retryAfter, nil
}
