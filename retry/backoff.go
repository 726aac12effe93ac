package retry

import (
	"context"
	"math"
	"time"
)

// backoffDelay computes min(initial * 2^attempt, max). attempt is 0-indexed.
// The float math overflows to max for large attempt counts.
func backoffDelay(attempt int, initial, max time.Duration) time.Duration {
	d := float64(initial) * math.Pow(2, float64(attempt))
	if d < 0 || d >= float64(max) {
		return max
	}
	return time.Duration(d)
}

// sleepContext blocks for d or until ctx is cancelled, whichever comes
// first, returning ctx's error on cancellation.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
