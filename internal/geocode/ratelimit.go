package geocode

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// RateLimiter paces outbound provider requests. Wait blocks until at least
// one interval has elapsed since the previous Wait returned, across all
// callers and providers, so fallback attempts for a single coordinate are
// spaced the same as attempts for different coordinates.
type RateLimiter struct {
	interval time.Duration
	clock    clockwork.Clock

	mu   sync.Mutex
	last time.Time
}

// NewRateLimiter creates a limiter with the given minimum gap. A nil clock
// selects the real clock; tests inject a fake one.
func NewRateLimiter(interval time.Duration, clock clockwork.Clock) *RateLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RateLimiter{interval: interval, clock: clock}
}

// Wait blocks the caller until the minimum gap has elapsed, honoring context
// cancellation while sleeping. The check-sleep-update sequence holds the lock
// so concurrent callers serialize rather than race the last-request time.
func (l *RateLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.last.IsZero() {
		if elapsed := l.clock.Now().Sub(l.last); elapsed < l.interval {
			select {
			case <-l.clock.After(l.interval - elapsed):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	l.last = l.clock.Now()
	return nil
}
