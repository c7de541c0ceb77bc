// Package resilience wraps calls to external collaborators with a bounded
// retry policy. Only transient failures are retried; contract violations
// and malformed output fail fast, since retrying them wastes time without
// improving the outcome.
package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	apperrors "github.com/fvicente/mazmorra/internal/errors"
)

const (
	defaultMaxAttempts     = 4
	defaultInitialInterval = time.Second
)

// Policy is a reusable retry policy.
type Policy struct {
	maxAttempts     int
	initialInterval time.Duration
}

// Option configures a Policy.
type Option func(*Policy)

// WithMaxAttempts sets the total number of attempts, first call included.
// Default: 4.
func WithMaxAttempts(attempts int) Option {
	return func(p *Policy) {
		p.maxAttempts = attempts
	}
}

// WithInitialInterval sets the first backoff delay; subsequent delays
// double. Default: 1s.
func WithInitialInterval(d time.Duration) Option {
	return func(p *Policy) {
		p.initialInterval = d
	}
}

// NewPolicy creates a retry policy.
func NewPolicy(opts ...Option) *Policy {
	p := &Policy{
		maxAttempts:     defaultMaxAttempts,
		initialInterval: defaultInitialInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Do runs op, retrying transient failures with exponential backoff until the
// attempt budget is exhausted or ctx is done. Non-transient failures are
// returned immediately.
func (p *Policy) Do(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.initialInterval
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.1

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(wrapped,
		backoff.WithContext(backoff.WithMaxRetries(bo, uint64(p.maxAttempts-1)), ctx))
}

// IsTransient classifies an error as retryable. Timeouts, connection
// resets, rate limiting and 5xx-style signals qualify; everything else,
// including context cancellation and contract violations, does not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	// A per-call deadline is a timeout and retryable; exhaustion of the
	// caller's own context stops the loop in Do regardless.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if apperrors.IsUnavailable(err) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection reset",
		"connection refused",
		"rate limit",
		"too many requests",
		"status 429",
		"status 500",
		"status 502",
		"status 503",
		"status 504",
		"timeout",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
