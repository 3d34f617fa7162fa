package httpclient

import (
	"context"
	"math/rand/v2"
	"time"
)

// RetryPolicy controls re-attempts for transient network failures. The
// policy is stateless: every invocation of Retry recomputes its schedule, so
// one policy value is safe to share across concurrent call sites.
type RetryPolicy struct {
	// Attempts is the maximum number of attempts, including the first.
	// Values below 1 behave as 1.
	Attempts int
	// Delay is the base backoff; attempt n waits Delay*n before attempt n+1.
	Delay time.Duration
	// Jitter spreads each wait by ±(wait*Jitter), drawn uniformly. Must be
	// in [0, 1).
	Jitter float64
}

// DefaultRetryPolicy matches a polite crawler: three attempts, a quarter
// second base delay, 10% jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Delay: 250 * time.Millisecond, Jitter: 0.1}
}

// Backoff returns the jittered wait after the given 1-based attempt number,
// clamped to be non-negative.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	wait := time.Duration(attempt) * p.Delay
	if p.Jitter > 0 {
		j := float64(wait) * p.Jitter
		wait += time.Duration(rand.Float64()*2*j - j)
	}
	if wait < 0 {
		wait = 0
	}
	return wait
}

func (p RetryPolicy) attempts() int {
	if p.Attempts < 1 {
		return 1
	}
	return p.Attempts
}

// Retry invokes op up to policy.Attempts times. Only transient network
// failures are re-attempted; a policy violation or any unclassified error
// aborts immediately and is returned as-is, as is the last transient failure
// once attempts are exhausted. Success on any attempt returns immediately.
func Retry[T any](ctx context.Context, policy RetryPolicy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := policy.attempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if !IsTransient(err) || attempt == attempts {
			return zero, err
		}
		lastErr = err

		if err := sleep(ctx, policy.Backoff(attempt)); err != nil {
			return zero, err
		}
	}
	return zero, lastErr
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
