package session

import (
	"math"
	"math/rand"
	"time"
)

// RetryPolicy defines retry behavior for persistence I/O.
type RetryPolicy struct {
	MaxRetries   int           // Maximum number of retry attempts (0 = no retries)
	InitialDelay time.Duration // Delay before the first retry
	MaxDelay     time.Duration // Cap on the backoff delay
	Multiplier   float64       // Exponential backoff multiplier
	Jitter       bool          // Add random jitter to delays
}

// DefaultRetryPolicy keeps retries short: persistence happens on every
// transition, so a stuck disk must not stall the caller for long.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   3,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// retryIO executes fn with bounded exponential backoff. Non-retryable
// errors are returned immediately; otherwise the last error is returned
// once retries are exhausted.
func retryIO(policy RetryPolicy, fn func() error) error {
	attempt := 0
	for {
		err := fn()
		if err == nil {
			return nil
		}

		if classifyIOError(err) == RetryClassNonRetryable {
			return err
		}
		if attempt >= policy.MaxRetries {
			return err
		}

		time.Sleep(backoffDelay(policy, attempt))
		attempt++
	}
}

func backoffDelay(policy RetryPolicy, attempt int) time.Duration {
	delay := float64(policy.InitialDelay) * math.Pow(policy.Multiplier, float64(attempt))
	if delay > float64(policy.MaxDelay) {
		delay = float64(policy.MaxDelay)
	}
	if policy.Jitter {
		delay += rand.Float64() * 0.2 * delay // 0-20% jitter
	}
	return time.Duration(delay)
}
