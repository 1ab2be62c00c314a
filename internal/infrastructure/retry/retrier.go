// Package retry re-runs store operations that failed with a transient
// error such as a deadlock or a busy database file.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Classifier reports whether err is transient.
type Classifier func(err error) bool

// Config tunes the exponential backoff.
type Config struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultConfig returns the settings used by the repositories.
func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     1 * time.Second,
		MaxElapsedTime:  10 * time.Second,
	}
}

// Retrier executes operations with exponential backoff on retryable errors.
type Retrier struct {
	cfg       Config
	retryable Classifier
	logger    zerolog.Logger
}

// New creates a Retrier. A nil classifier retries nothing.
func New(cfg Config, retryable Classifier, logger zerolog.Logger) *Retrier {
	if retryable == nil {
		retryable = func(error) bool { return false }
	}
	return &Retrier{cfg: cfg, retryable: retryable, logger: logger}
}

// Retry executes an operation with exponential backoff on retryable errors.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialInterval
	b.MaxInterval = r.cfg.MaxInterval
	b.MaxElapsedTime = r.cfg.MaxElapsedTime

	retryCount := 0

	return backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		if !r.retryable(err) {
			return backoff.Permanent(err)
		}

		retryCount++
		if retryCount > r.cfg.MaxRetries {
			return backoff.Permanent(err)
		}

		r.logger.Warn().Err(err).Int("retry", retryCount).Msg("retryable store error, retrying")

		return err
	}, backoff.WithContext(b, ctx))
}
