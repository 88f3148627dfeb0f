package uploader

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces uploads out and honours destination back-off requests.
// It uses a token bucket with a burst of one, so the first upload of an
// idle period goes out immediately.
type Pacer struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewPacer creates a pacer that allows one upload per delay.
// A zero delay disables pacing.
func NewPacer(delay time.Duration) *Pacer {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Pacer{
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Wait blocks until the next upload may start.
// It also respects any back-off period set by Backoff.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	retryAt := p.retryAt
	p.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return p.limiter.Wait(ctx)
}

// Backoff delays every upload until d has elapsed.
// Non-positive durations fall back to defaultBackoff.
func (p *Pacer) Backoff(d time.Duration) {
	if d <= 0 {
		d = defaultBackoff
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if at := time.Now().Add(d); at.After(p.retryAt) {
		p.retryAt = at
	}
}

// defaultBackoff applies when a destination rate-limits without a hint.
const defaultBackoff = 30 * time.Second
