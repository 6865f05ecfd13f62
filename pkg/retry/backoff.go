package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

func ExponentialBackoff(initialInterval, maxInterval time.Duration, multiplier float64) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = initialInterval
	exp.MaxInterval = maxInterval
	exp.Multiplier = multiplier
	exp.MaxElapsedTime = 0
	return exp
}

// Do runs op with exponential backoff, giving up after maxAttempts or
// when ctx is done.
func Do(ctx context.Context, maxAttempts uint64, op func() error) error {
	exp := ExponentialBackoff(100*time.Millisecond, 2*time.Second, 2.0)
	b := backoff.WithContext(backoff.WithMaxRetries(exp, maxAttempts-1), ctx)
	return backoff.Retry(op, b)
}

// Permanent marks err so Do stops retrying it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}
