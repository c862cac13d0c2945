// Package retry provides a shared backoff policy for outbound calls.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes a bounded exponential backoff.
type Policy struct {
	MaxAttempts     uint64
	InitialInterval time.Duration
	Multiplier      float64
}

// DefaultPolicy matches the delivery guarantees of the messaging layer:
// up to 3 attempts with 2s, 4s waits between them.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 2 * time.Second,
		Multiplier:      2,
	}
}

// Do runs op, retrying transient errors per the policy. Wrap an error
// in backoff.Permanent to stop early.
func (p Policy) Do(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, p.MaxAttempts-1), ctx))
}

// Permanent marks err as non-retryable.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
