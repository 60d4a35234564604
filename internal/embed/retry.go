package embed

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig shapes the backoff used around model downloads.
type RetryConfig struct {
	// MaxRetries counts retries only; the initial attempt is free.
	MaxRetries int

	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the growing wait.
	MaxDelay time.Duration

	// Multiplier scales the wait after every failed attempt.
	Multiplier float64
}

// DefaultRetryConfig is tuned for multi-hundred-MB model pulls over
// flaky links: 1s, 2s, 4s waits, capped at 16s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: time.Second,
		MaxDelay:     16 * time.Second,
		Multiplier:   2.0,
	}
}

// DownloadWithRetry runs fn until it succeeds or the retry budget is
// spent, sleeping with exponential backoff between failures. Context
// cancellation wins over both the attempt loop and the sleeps.
func DownloadWithRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	wait := cfg.InitialDelay

	var err error
	for attempt := 0; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err = fn(); err == nil {
			return nil
		}
		if attempt == cfg.MaxRetries {
			return fmt.Errorf("failed after %d retries: %w", cfg.MaxRetries, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		wait = time.Duration(float64(wait) * cfg.Multiplier)
		if wait > cfg.MaxDelay {
			wait = cfg.MaxDelay
		}
	}
}
