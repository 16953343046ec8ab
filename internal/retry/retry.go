// Package retry wraps fallible operations with a fixed-attempt,
// fixed-delay retry policy. It absorbs transient unavailability of the
// document store so single blips never surface to the operator.
package retry

import (
	"context"
	"time"
)

// Executor retries an operation a bounded number of times with a fixed
// delay between attempts. The zero value is not usable; construct with New.
type Executor struct {
	attempts int
	delay    time.Duration
}

// New creates an Executor. attempts values below 1 are treated as 1 and a
// negative delay as zero.
func New(attempts int, delay time.Duration) *Executor {
	if attempts < 1 {
		attempts = 1
	}
	if delay < 0 {
		delay = 0
	}
	return &Executor{attempts: attempts, delay: delay}
}

// Do invokes op until it succeeds or the attempt budget is exhausted.
// On success it returns nil immediately. On persistent failure it returns
// the error from the final attempt; earlier errors are discarded. The
// inter-attempt wait honours ctx cancellation and holds no shared state,
// so concurrent callers are never blocked by each other's retries.
func (e *Executor) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error
	for i := 0; i < e.attempts; i++ {
		if i > 0 {
			timer := time.NewTimer(e.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return lastErr
			case <-timer.C:
			}
		}
		if err := op(ctx); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
