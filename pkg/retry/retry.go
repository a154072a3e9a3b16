// Package retry runs operations against flaky upstreams with bounded backoff.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"
)

// Backoff selects how the wait between attempts grows.
type Backoff int

const (
	// BackoffLinear waits InitialDelay, 2*InitialDelay, 3*InitialDelay, ...
	BackoffLinear Backoff = iota
	// BackoffExponential multiplies the previous wait by Multiplier.
	BackoffExponential
)

// Config defines retry behavior.
type Config struct {
	MaxRetries   int // additional attempts after the first
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Backoff      Backoff
	Multiplier   float64 // exponential only
	JitterFactor float64 // 0.0-1.0
}

// DefaultConfig is the completion-service policy: 2 extra attempts, linear
// backoff starting at one second.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:   2,
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
		Backoff:      BackoffLinear,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// ExponentialConfig is used for data-source connections at startup.
func ExponentialConfig() *Config {
	return &Config{
		MaxRetries:   3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Backoff:      BackoffExponential,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// delayFor returns the wait before retry number attempt (0-based), before jitter.
func (c *Config) delayFor(attempt int) time.Duration {
	var d time.Duration
	switch c.Backoff {
	case BackoffExponential:
		d = c.InitialDelay
		mult := c.Multiplier
		if mult <= 0 {
			mult = 2.0
		}
		for i := 0; i < attempt; i++ {
			d = time.Duration(float64(d) * mult)
			if c.MaxDelay > 0 && d > c.MaxDelay {
				break
			}
		}
	default:
		d = c.InitialDelay * time.Duration(attempt+1)
	}
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

func applyJitter(delay time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return delay
	}
	jitter := float64(delay) * jitterFactor * (rand.Float64()*2 - 1)
	return time.Duration(float64(delay) + jitter)
}

func wait(ctx context.Context, cfg *Config, attempt int) error {
	select {
	case <-time.After(applyJitter(cfg.delayFor(attempt), cfg.JitterFactor)):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do executes fn until it succeeds or retries are exhausted, retrying every error.
// Respects context cancellation during wait periods.
func Do(ctx context.Context, cfg *Config, fn func() error) error {
	_, err := DoWithResult(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult is Do for functions that return a value.
func DoWithResult[T any](ctx context.Context, cfg *Config, fn func() (T, error)) (T, error) {
	return doWithResult(ctx, cfg, func(error) bool { return true }, fn)
}

// DoIfRetryable only retries errors IsRetryable accepts; anything else returns immediately.
func DoIfRetryable(ctx context.Context, cfg *Config, fn func() error) error {
	_, err := DoWithResultIfRetryable(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResultIfRetryable is DoIfRetryable for functions that return a value.
func DoWithResultIfRetryable[T any](ctx context.Context, cfg *Config, fn func() (T, error)) (T, error) {
	return doWithResult(ctx, cfg, IsRetryable, fn)
}

func doWithResult[T any](ctx context.Context, cfg *Config, shouldRetry func(error) bool, fn func() (T, error)) (T, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var result T
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		r, err := fn()
		if err == nil {
			return r, nil
		}
		result, lastErr = r, err

		if !shouldRetry(err) {
			return result, err
		}
		if attempt < cfg.MaxRetries {
			if werr := wait(ctx, cfg, attempt); werr != nil {
				return result, werr
			}
		}
	}
	return result, lastErr
}

// RetryableError is implemented by errors that declare their own retryability.
type RetryableError interface {
	error
	IsRetryable() bool
}

// IsRetryable reports whether err is a transient upstream condition: overload,
// rate limiting, 5xx or a dropped connection. Errors implementing
// RetryableError decide for themselves.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var r RetryableError
	if errors.As(err, &r) {
		return r.IsRetryable()
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"timeout",
		"timed out",
		"temporary failure",
		"429",
		"500",
		"502",
		"503",
		"504",
		"529",
		"rate limit",
		"overloaded",
		"service unavailable",
		"too many requests",
	}
	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
