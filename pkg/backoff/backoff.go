package backoff

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Policy describes an exponential backoff schedule.
type Policy struct {
	BaseDelay  time.Duration // delay before the first retry
	MaxDelay   time.Duration // cap applied to every computed delay
	Multiplier float64       // growth factor between attempts (typically 2.0)
	Jitter     bool          // add random jitter to prevent thundering herd
}

// DefaultPolicy returns the schedule used for coordinator reconnects.
func DefaultPolicy() Policy {
	return Policy{
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
		Jitter:     false,
	}
}

// Delay computes the delay for the given 1-based attempt number:
// BaseDelay * Multiplier^(attempt-1), capped at MaxDelay.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	d := time.Duration(delay)
	if p.Jitter {
		// +/- 25% random variation
		jitter := d / 4
		d = d - jitter + time.Duration(rand.Int63n(int64(2*jitter)+1))
	}
	return d
}

// Retry executes fn up to maxAttempts times, sleeping according to the policy
// between failures. Cancelling the context aborts both the call gap and the
// whole loop.
func Retry(ctx context.Context, p Policy, maxAttempts int, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}

		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Delay(attempt)):
		}
	}

	return lastErr
}
