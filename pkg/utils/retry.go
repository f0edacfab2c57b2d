// Package utils holds small shared helpers with no domain knowledge.
package utils

import (
	"context"
	"time"
)

// RetryPolicy bounds a retried operation: at most Attempts tries, with
// an exponentially growing pause between them.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
	MaxDelay time.Duration
	Factor   float64
}

// DefaultRetryPolicy suits short network fetches: three tries, starting
// at 200ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: 3,
		Delay:    200 * time.Millisecond,
		MaxDelay: 5 * time.Second,
		Factor:   2,
	}
}

// Retry runs fn until it succeeds, attempts run out, or ctx ends.
// Waits between attempts respect ctx.
func Retry(ctx context.Context, p RetryPolicy, fn func() error) error {
	if p.Attempts < 1 {
		p.Attempts = 1
	}

	var lastErr error
	delay := p.Delay
	for attempt := 0; attempt < p.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * p.Factor)
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}

		if err := fn(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
