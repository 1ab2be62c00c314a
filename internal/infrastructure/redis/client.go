// Package redis opens the Redis connection shared by the change feed, the
// profile cache and the idempotency store.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Config holds Redis connection settings.
type Config struct {
	URL             string
	DialTimeout     time.Duration
	ConnectAttempts uint64
	RetryInterval   time.Duration
}

// DefaultConfig returns settings for url suitable for startup.
func DefaultConfig(url string) Config {
	return Config{
		URL:             url,
		DialTimeout:     5 * time.Second,
		ConnectAttempts: 5,
		RetryInterval:   200 * time.Millisecond,
	}
}

// NewClient creates a new Redis client and waits for it to answer a PING,
// retrying with exponential backoff while the server comes up.
func NewClient(ctx context.Context, cfg Config, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}

	client := redis.NewClient(opts)

	b := backoff.NewExponentialBackOff()
	if cfg.RetryInterval > 0 {
		b.InitialInterval = cfg.RetryInterval
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, cfg.ConnectAttempts), ctx)

	attempt := 0
	ping := func() error {
		attempt++
		return client.Ping(ctx).Err()
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("redis not ready")
	}

	// Verify connection
	if err := backoff.RetryNotify(ping, policy, notify); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
