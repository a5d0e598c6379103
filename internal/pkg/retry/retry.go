// Package retry runs an operation under a bounded exponential backoff policy.
// The policy owns attempt counting, delay computation and waiting; the caller
// supplies the operation and the predicate that decides whether a failure is
// worth another attempt.
package retry

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Policy describes how many times to retry and how long to wait in between.
type Policy struct {
	MaxRetries int           // retries after the first attempt
	BaseDelay  time.Duration // delay before retry i is BaseDelay * 2^i, capped at MaxDelay
	MaxDelay   time.Duration
	MaxJitter  time.Duration // uniform jitter in [0, MaxJitter] added to every delay

	// Jitter returns a value in [0, max]. Defaults to math/rand/v2.
	Jitter func(max time.Duration) time.Duration
	// Sleep waits for d or until ctx is done. Defaults to a timer select.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry, when set, is called before each wait.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// Default is 3 retries with a 1s base, a 10s cap and up to 1s of jitter.
func Default() Policy {
	return Policy{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   10 * time.Second,
		MaxJitter:  time.Second,
	}
}

// Delay returns the wait before the retry that follows the given zero-based attempt.
func (p Policy) Delay(attempt int) time.Duration {
	return p.backoff(attempt) + p.jitter()
}

func (p Policy) backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	// 2^62 overflows Duration long before any sane cap is reached
	if attempt > 62 {
		return p.MaxDelay
	}
	d := float64(p.BaseDelay) * math.Pow(2, float64(attempt))
	if d > float64(p.MaxDelay) || d > math.MaxInt64 {
		return p.MaxDelay
	}
	return time.Duration(d)
}

func (p Policy) jitter() time.Duration {
	if p.MaxJitter <= 0 {
		return 0
	}
	if p.Jitter != nil {
		return p.Jitter(p.MaxJitter)
	}
	return time.Duration(rand.Int64N(int64(p.MaxJitter) + 1))
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	return SleepContext(ctx, d)
}

// SleepContext blocks for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Outcome reports how a Do call ended.
type Outcome struct {
	Attempts  int
	Exhausted bool // every attempt failed with a retryable error
}

// Do calls op until it succeeds, returns an error rejected by retryable, or
// MaxRetries+1 attempts have been made. The last error is returned unchanged.
// If ctx ends while waiting, ctx.Err() is returned.
func Do[T any](ctx context.Context, p Policy, retryable func(error) bool, op func(ctx context.Context, attempt int) (T, error)) (T, Outcome, error) {
	var zero T
	var out Outcome

	for attempt := 0; ; attempt++ {
		out.Attempts = attempt + 1

		v, err := op(ctx, attempt)
		if err == nil {
			return v, out, nil
		}

		if !retryable(err) {
			return zero, out, err
		}

		if attempt >= p.MaxRetries {
			out.Exhausted = true
			return zero, out, err
		}

		delay := p.Delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}

		if serr := p.sleep(ctx, delay); serr != nil {
			return zero, out, serr
		}
	}
}
