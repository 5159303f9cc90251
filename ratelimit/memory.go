package ratelimit

import (
	"context"
	"sync"
	"time"
)

type windowEntry struct {
	count   int64
	resetAt time.Time
}

// MemoryLimiter is an in-process fixed-window limiter for tests and development.
type MemoryLimiter struct {
	mu          sync.Mutex
	entries     map[int64]*windowEntry
	maxRequests int64
	window      time.Duration
	now         func() time.Time
}

// NewMemoryLimiter mirrors New without a backing store.
func NewMemoryLimiter(maxRequests int, window time.Duration) *MemoryLimiter {
	if maxRequests <= 0 {
		maxRequests = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryLimiter{
		entries:     make(map[int64]*windowEntry),
		maxRequests: int64(maxRequests),
		window:      window,
		now:         time.Now,
	}
}

// CheckAndIncrement counts this request against the chat's current window.
func (l *MemoryLimiter) CheckAndIncrement(ctx context.Context, chatID int64) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[chatID]
	if !ok || now.After(entry.resetAt) {
		entry = &windowEntry{resetAt: now.Add(l.window)}
		l.entries[chatID] = entry
	}
	entry.count++

	if entry.count > l.maxRequests {
		return true, entry.resetAt.Sub(now), nil
	}
	return false, 0, nil
}
