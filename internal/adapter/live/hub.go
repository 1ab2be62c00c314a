package live

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// SnapshotLoader reads an owner's full transaction list.
type SnapshotLoader interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Transaction, error)
}

// Hub implements usecase.SnapshotSource on top of a ChangeFeed: it loads the
// snapshot on subscribe and reloads it on every change signal.
type Hub struct {
	loader SnapshotLoader
	feed   usecase.ChangeFeed
	logger zerolog.Logger
}

// NewHub creates a new Hub.
func NewHub(loader SnapshotLoader, feed usecase.ChangeFeed, logger zerolog.Logger) *Hub {
	return &Hub{loader: loader, feed: feed, logger: logger}
}

// Subscribe starts listening before the first load so no change between the
// load and the listener is missed. onUpdate runs once before Subscribe
// returns and then on the hub's goroutine; it must not call Close.
func (h *Hub) Subscribe(ctx context.Context, ownerID string, onUpdate func([]*domain.Transaction)) (usecase.Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)

	signals, err := h.feed.Listen(subCtx, ownerID)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to listen for changes: %w", err)
	}

	snapshot, err := h.loader.ListByOwner(subCtx, ownerID)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	onUpdate(snapshot)

	sub := &subscription{cancel: cancel, done: make(chan struct{})}
	go h.run(subCtx, sub, ownerID, signals, onUpdate)
	return sub, nil
}

func (h *Hub) run(ctx context.Context, sub *subscription, ownerID string, signals <-chan struct{}, onUpdate func([]*domain.Transaction)) {
	defer close(sub.done)

	for range signals {
		snapshot, err := h.loader.ListByOwner(ctx, ownerID)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			h.logger.Error().Err(err).Str("owner_id", ownerID).Msg("failed to reload snapshot")
			continue
		}
		onUpdate(snapshot)
	}
}

type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Close cancels the listener and waits for it to exit.
func (s *subscription) Close() error {
	s.once.Do(s.cancel)
	<-s.done
	return nil
}
