// Package retry provides a small bounded exponential-backoff helper for
// transient provider failures.
package retry

import (
	"context"
	"time"
)

// Do invokes fn up to attempts times, sleeping base, 2*base, 4*base... between
// tries. It returns nil on the first success and the last error otherwise.
// Cancellation of ctx stops further attempts immediately.
func Do(ctx context.Context, attempts int, base time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-time.After(base << i):
		case <-ctx.Done():
			return err
		}
	}
	return err
}
