package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ChangeFeed implements usecase.ChangeFeed over Redis pub/sub so that every
// server instance sees writes made through any other.
type ChangeFeed struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewChangeFeed creates a new ChangeFeed.
func NewChangeFeed(client *redis.Client, logger zerolog.Logger) *ChangeFeed {
	return &ChangeFeed{
		client: client,
		prefix: "fintrack:transactions:",
		logger: logger,
	}
}

func (f *ChangeFeed) channel(ownerID string) string {
	return f.prefix + ownerID
}

// Notify publishes a change signal for ownerID.
func (f *ChangeFeed) Notify(ctx context.Context, ownerID string) error {
	if err := f.client.Publish(ctx, f.channel(ownerID), "changed").Err(); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}
	return nil
}

// Listen subscribes to ownerID's channel. Bursts of messages coalesce into
// a single pending signal.
func (f *ChangeFeed) Listen(ctx context.Context, ownerID string) (<-chan struct{}, error) {
	pubsub := f.client.Subscribe(ctx, f.channel(ownerID))
	// Wait for the subscription confirmation so no publish is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan struct{}, 1)
	msgs := pubsub.Channel()

	go func() {
		defer close(out)
		defer func() {
			if err := pubsub.Close(); err != nil {
				f.logger.Warn().Err(err).Str("owner_id", ownerID).Msg("failed to close subscription")
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	return out, nil
}
