// Package ratelimit guards mutating endpoints with a per-identity
// sliding counting window.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/opsglass/alertboard/internal/metrics"
)

// Limiter admits or denies a request for the given identity.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Close() error
}

type windowState struct {
	count   int
	resetAt time.Time
}

// memoryLimiter implements a sliding-by-reset counting window: the window
// for an identity starts at its first request (or at the first request
// after the previous window expired) and lasts for the configured
// duration. Entries are never evicted; the table grows with the number of
// distinct identities seen over the process lifetime.
type memoryLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	state  map[string]*windowState
	now    func() time.Time
}

// NewMemoryLimiter creates an in-memory Limiter allowing limit requests
// per identity per window.
func NewMemoryLimiter(limit int, window time.Duration) Limiter {
	return &memoryLimiter{
		limit:  limit,
		window: window,
		state:  make(map[string]*windowState),
		now:    time.Now,
	}
}

// Allow records one request for key and reports whether it falls within
// the window quota. The check-and-increment is performed under a single
// lock so admission decisions for one identity are linearizable. Denied
// requests still consume the window.
func (m *memoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	now := m.now()

	m.mu.Lock()
	st, ok := m.state[key]
	if !ok {
		st = &windowState{resetAt: now.Add(m.window)}
		m.state[key] = st
	}
	if now.After(st.resetAt) {
		st.count = 0
		st.resetAt = now.Add(m.window)
	}
	st.count++
	allowed := st.count <= m.limit
	m.mu.Unlock()

	if !allowed {
		metrics.RateLimitDenials.Inc()
	}
	return allowed, nil
}

func (m *memoryLimiter) Close() error {
	return nil
}

// NoOpLimiter always allows requests (for testing or disabled rate limiting)
type NoOpLimiter struct{}

func (n *NoOpLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return true, nil
}

func (n *NoOpLimiter) Close() error {
	return nil
}
