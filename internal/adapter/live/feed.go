// Package live turns store change signals into pushed transaction snapshots.
package live

import (
	"context"
	"sync"
)

// MemoryFeed is an in-process ChangeFeed. It serves a single server
// instance; use the Redis feed when several instances share a store.
type MemoryFeed struct {
	mu        sync.Mutex
	listeners map[string]map[chan struct{}]struct{}
}

// NewMemoryFeed creates an empty MemoryFeed.
func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{listeners: make(map[string]map[chan struct{}]struct{})}
}

// Notify wakes every listener of ownerID. Signals coalesce: a listener that
// has not consumed the previous signal receives only one.
func (f *MemoryFeed) Notify(_ context.Context, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for ch := range f.listeners[ownerID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

// Listen registers a listener for ownerID until ctx is done.
func (f *MemoryFeed) Listen(ctx context.Context, ownerID string) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	f.mu.Lock()
	set, ok := f.listeners[ownerID]
	if !ok {
		set = make(map[chan struct{}]struct{})
		f.listeners[ownerID] = set
	}
	set[ch] = struct{}{}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()

		f.mu.Lock()
		delete(f.listeners[ownerID], ch)
		if len(f.listeners[ownerID]) == 0 {
			delete(f.listeners, ownerID)
		}
		close(ch)
		f.mu.Unlock()
	}()

	return ch, nil
}

// Listeners returns the number of active listeners for ownerID.
func (f *MemoryFeed) Listeners(ownerID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners[ownerID])
}
