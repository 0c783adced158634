package retry

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Config holds retry behavior for transient upstream failures.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
}

// DefaultConfig is tuned for short-lived HTTP calls sitting inside a request:
// two quick re-tries, never more than a second of added latency.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    time.Second,
		Multiplier:  2.0,
	}
}

// Func is the operation under retry.
type Func func() error

// Retryable decides whether an error is transient.
type Retryable func(error) bool

// Do retries fn with exponential backoff until it succeeds, returns a
// non-retryable error, exhausts the attempts, or the context ends.
func Do(ctx context.Context, cfg Config, fn Func, retryable Retryable) error {
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if retryable != nil && !retryable(err) {
			return err
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		delay := time.Duration(float64(cfg.BaseDelay) * math.Pow(cfg.Multiplier, float64(attempt)))
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("max attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
}
