package sqslistener

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy decides, for a given attempt number, whether to retry
// and how long to wait first. It wraps cenkalti/backoff's delay
// strategies (the same library the teacher already depends on for its
// Kafka consumer's reconnect loop) with the attempt-budget semantics
// backoff.Retry itself doesn't model for in-flight message processing.
type RetryPolicy interface {
	// NextDelay returns the delay before attempt (1-indexed) and
	// whether that attempt should even be made.
	NextDelay(attempt int) (time.Duration, bool)

	// MaxAttempts returns the configured retry budget.
	MaxAttempts() int
}

// ExponentialRetryPolicy grows the delay geometrically between
// attempts, capped at maxDelay. Each message being retried concurrently
// gets its own walk over a freshly-constructed backoff.ExponentialBackOff
// (guarded by mu only to serialize the cheap construction+walk), so one
// message's attempt sequence never perturbs another's.
type ExponentialRetryPolicy struct {
	mu          sync.Mutex
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// NewExponentialRetryPolicy builds a policy that waits baseDelay after
// the first failure, doubling after each further failure up to
// maxDelay, for up to maxAttempts retries.
func NewExponentialRetryPolicy(maxAttempts int, baseDelay, maxDelay time.Duration) *ExponentialRetryPolicy {
	return &ExponentialRetryPolicy{maxAttempts: maxAttempts, baseDelay: baseDelay, maxDelay: maxDelay}
}

func (p *ExponentialRetryPolicy) MaxAttempts() int { return p.maxAttempts }

func (p *ExponentialRetryPolicy) NextDelay(attempt int) (time.Duration, bool) {
	if attempt > p.maxAttempts {
		return 0, false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.baseDelay
	b.MaxInterval = p.maxDelay
	b.MaxElapsedTime = 0
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.Reset()

	var delay time.Duration
	for i := 0; i < attempt; i++ {
		delay = b.NextBackOff()
	}
	if delay > p.maxDelay {
		delay = p.maxDelay
	}
	return delay, true
}

// FixedRetryPolicy waits the same delay between every attempt.
type FixedRetryPolicy struct {
	maxAttempts int
	delay       time.Duration
}

// NewFixedRetryPolicy builds a policy with a constant inter-attempt
// delay, backed by backoff.ConstantBackOff.
func NewFixedRetryPolicy(maxAttempts int, delay time.Duration) *FixedRetryPolicy {
	return &FixedRetryPolicy{maxAttempts: maxAttempts, delay: delay}
}

func (p *FixedRetryPolicy) MaxAttempts() int { return p.maxAttempts }

func (p *FixedRetryPolicy) NextDelay(attempt int) (time.Duration, bool) {
	if attempt > p.maxAttempts {
		return 0, false
	}
	cb := backoff.NewConstantBackOff(p.delay)
	return cb.NextBackOff(), true
}
