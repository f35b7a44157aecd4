// Package ratelimit throttles repeated attempts per key with a single
// minimum-interval window.
package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"marketplace/internal/apperr"
)

// Limiter admits an attempt for key only if the previous accepted attempt is
// at least interval old. Rejected attempts do not move the window.
type Limiter interface {
	Attempt(ctx context.Context, key string, interval time.Duration) error
}

type MemoryLimiter struct {
	mu   sync.Mutex
	last map[string]time.Time
	now  func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		last: make(map[string]time.Time),
		now:  time.Now,
	}
}

func (l *MemoryLimiter) Attempt(ctx context.Context, key string, interval time.Duration) error {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if prev, ok := l.last[key]; ok {
		if elapsed := now.Sub(prev); elapsed < interval {
			return apperr.TooManyAttempts(retryIn(interval - elapsed))
		}
	}

	l.last[key] = now
	return nil
}

// Prune drops records older than maxAge and returns how many were removed.
func (l *MemoryLimiter) Prune(maxAge time.Duration) int {
	cutoff := l.now().Add(-maxAge)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, at := range l.last {
		if at.Before(cutoff) {
			delete(l.last, key)
			removed++
		}
	}
	return removed
}

// RunJanitor prunes every period until ctx is done.
func (l *MemoryLimiter) RunJanitor(ctx context.Context, period, maxAge time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Prune(maxAge)
		}
	}
}

func (l *MemoryLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.last)
}

func retryIn(d time.Duration) string {
	return (time.Duration(math.Ceil(d.Seconds())) * time.Second).String()
}
