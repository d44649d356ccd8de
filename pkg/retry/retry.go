// Package retry runs operations with bounded attempts and exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrMaxAttempts is joined with the last failure when every attempt fails.
var ErrMaxAttempts = errors.New("max retry attempts exceeded")

// Config bounds a retry loop. After failed attempt n (0-based) the loop
// waits InitialDelay * Multiplier^n, capped at MaxDelay.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// Retryable reports whether err warrants another attempt. Nil retries every error.
	Retryable func(error) bool

	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultConfig returns three attempts with 1s, 2s backoff.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2,
	}
}

func (c *Config) finalize() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 1
	}
	if c.InitialDelay < 0 {
		c.InitialDelay = 0
	}
	if c.Multiplier <= 0 {
		c.Multiplier = 2
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 30 * time.Second
	}
	if c.Sleep == nil {
		c.Sleep = Sleep
	}
}

// Backoff returns the wait after failed attempt n.
func (c Config) Backoff(attempt int) time.Duration {
	d := time.Duration(float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(attempt)))
	if c.MaxDelay > 0 && d > c.MaxDelay {
		return c.MaxDelay
	}
	return d
}

// Do calls fn until it succeeds, returns a non-retryable error, the
// attempts are exhausted, or ctx is done.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context, attempt int) error) error {
	cfg.finalize()

	var lastErr error
	for attempt := range cfg.MaxAttempts {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return fmt.Errorf("%w: %w", err, lastErr)
			}
			return err
		}

		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if cfg.Retryable != nil && !cfg.Retryable(err) {
			return err
		}

		if attempt == cfg.MaxAttempts-1 {
			break
		}

		if err := cfg.Sleep(ctx, cfg.Backoff(attempt)); err != nil {
			return fmt.Errorf("%w: %w", err, lastErr)
		}
	}

	return fmt.Errorf("%w (%d): %w", ErrMaxAttempts, cfg.MaxAttempts, lastErr)
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
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
