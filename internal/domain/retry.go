package domain

import (
	"fmt"
	"math"
	"time"
)

// RetryConfig is the process-wide retry and backoff policy for hook
// execution. It can be replaced at runtime; in-flight attempt sequences pick
// up new values at their next delay computation.
type RetryConfig struct {
	// MaxRetries is the number of automatic retries after the first attempt.
	// Zero disables retries.
	MaxRetries int

	// RetryDelay is the pause before the first retry.
	RetryDelay time.Duration

	// BackoffMultiplier grows the pause exponentially between retries.
	BackoffMultiplier float64

	// MaxRetryDelay caps the pause regardless of growth.
	MaxRetryDelay time.Duration
}

// DefaultRetryConfig returns the standard policy: three retries starting at
// one second, doubling, capped at ten seconds.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		RetryDelay:        1000 * time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxRetryDelay:     10000 * time.Millisecond,
	}
}

// Validate checks the policy for internal consistency.
func (c RetryConfig) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries must not be negative", ErrInvalidConfig)
	}
	if c.RetryDelay <= 0 {
		return fmt.Errorf("%w: retry delay must be positive", ErrInvalidConfig)
	}
	if c.BackoffMultiplier < 1 {
		return fmt.Errorf("%w: backoff multiplier must be at least 1", ErrInvalidConfig)
	}
	if c.MaxRetryDelay < c.RetryDelay {
		return fmt.Errorf("%w: max retry delay must not undercut retry delay", ErrInvalidConfig)
	}
	return nil
}

// DelayFor returns the pause before the given 1-based attempt. The first
// attempt has no delay; attempt k waits RetryDelay x Multiplier^(k-2),
// capped at MaxRetryDelay. With the default policy the sequence is 1000,
// 2000, 4000, 8000, 10000, 10000, ... milliseconds.
func (c RetryConfig) DelayFor(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	delay := float64(c.RetryDelay) * math.Pow(c.BackoffMultiplier, float64(attempt-2))
	if c.MaxRetryDelay > 0 && delay > float64(c.MaxRetryDelay) {
		return c.MaxRetryDelay
	}
	return time.Duration(delay)
}

// RetryOverrides carries a partial policy update. Nil fields keep their
// current values.
type RetryOverrides struct {
	MaxRetries        *int
	RetryDelay        *time.Duration
	BackoffMultiplier *float64
	MaxRetryDelay     *time.Duration
}

// Apply merges the overrides onto c and returns the result.
func (c RetryConfig) Apply(o RetryOverrides) RetryConfig {
	if o.MaxRetries != nil {
		c.MaxRetries = *o.MaxRetries
	}
	if o.RetryDelay != nil {
		c.RetryDelay = *o.RetryDelay
	}
	if o.BackoffMultiplier != nil {
		c.BackoffMultiplier = *o.BackoffMultiplier
	}
	if o.MaxRetryDelay != nil {
		c.MaxRetryDelay = *o.MaxRetryDelay
	}
	return c
}
