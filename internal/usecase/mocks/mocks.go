package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// FakeTransactionRepository is an in-memory TransactionRepository.
type FakeTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction

	CreateFunc      func(ctx context.Context, t *domain.Transaction) error
	UpdateFunc      func(ctx context.Context, t *domain.Transaction) error
	DeleteFunc      func(ctx context.Context, id string) error
	ListByOwnerFunc func(ctx context.Context, ownerID string) ([]*domain.Transaction, error)
}

func NewFakeTransactionRepository(seed ...*domain.Transaction) *FakeTransactionRepository {
	r := &FakeTransactionRepository{transactions: make(map[string]*domain.Transaction)}
	for _, t := range seed {
		r.transactions[t.ID] = t
	}
	return r
}

func (r *FakeTransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.transactions[t.ID] = &cp
	return nil
}

func (r *FakeTransactionRepository) GetByID(_ context.Context, id string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *FakeTransactionRepository) Update(ctx context.Context, t *domain.Transaction) error {
	if r.UpdateFunc != nil {
		return r.UpdateFunc(ctx, t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transactions[t.ID]; !ok {
		return domain.ErrTransactionNotFound
	}
	cp := *t
	r.transactions[t.ID] = &cp
	return nil
}

func (r *FakeTransactionRepository) Delete(ctx context.Context, id string) error {
	if r.DeleteFunc != nil {
		return r.DeleteFunc(ctx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transactions[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(r.transactions, id)
	return nil
}

func (r *FakeTransactionRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Transaction, error) {
	if r.ListByOwnerFunc != nil {
		return r.ListByOwnerFunc(ctx, ownerID)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Transaction, 0)
	for _, t := range r.transactions {
		if t.OwnerID == ownerID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// FakeUserRepository is an in-memory UserRepository.
type FakeUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	GetByIDCalls int
}

func NewFakeUserRepository() *FakeUserRepository {
	return &FakeUserRepository{users: make(map[string]*domain.User)}
}

func (r *FakeUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *FakeUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.GetByIDCalls++
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *FakeUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// SequenceIDGenerator returns prefix-1, prefix-2, ...
type SequenceIDGenerator struct {
	mu     sync.Mutex
	Prefix string
	n      int
}

func (g *SequenceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	prefix := g.Prefix
	if prefix == "" {
		prefix = "id"
	}
	return fmt.Sprintf("%s-%d", prefix, g.n)
}

// RecordingPublisher keeps every published event.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []*domain.TransactionEvent
	Err    error
}

func (p *RecordingPublisher) Publish(_ context.Context, event *domain.TransactionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, event)
	return nil
}

func (p *RecordingPublisher) Published() []*domain.TransactionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*domain.TransactionEvent, len(p.Events))
	copy(out, p.Events)
	return out
}

// FakeCache is an in-memory Cache without expiry.
type FakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewFakeCache() *FakeCache {
	return &FakeCache{data: make(map[string][]byte)}
}

func (c *FakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, usecase.ErrCacheMiss
	}
	return v, nil
}

func (c *FakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *FakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// ManualSnapshotSource lets a test push snapshots by hand.
type ManualSnapshotSource struct {
	mu        sync.Mutex
	initial   []*domain.Transaction
	listeners map[int]func([]*domain.Transaction)
	next      int

	SubscribeErr error
	Closed       int
}

func NewManualSnapshotSource(initial ...*domain.Transaction) *ManualSnapshotSource {
	return &ManualSnapshotSource{
		initial:   initial,
		listeners: make(map[int]func([]*domain.Transaction)),
	}
}

func (s *ManualSnapshotSource) Subscribe(_ context.Context, _ string, onUpdate func([]*domain.Transaction)) (usecase.Subscription, error) {
	if s.SubscribeErr != nil {
		return nil, s.SubscribeErr
	}

	s.mu.Lock()
	id := s.next
	s.next++
	s.listeners[id] = onUpdate
	initial := s.initial
	s.mu.Unlock()

	onUpdate(initial)
	return &manualSubscription{source: s, id: id}, nil
}

// Push delivers snapshot to every open subscription.
func (s *ManualSnapshotSource) Push(snapshot []*domain.Transaction) {
	s.mu.Lock()
	fns := make([]func([]*domain.Transaction), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// Subscribers returns the number of open subscriptions.
func (s *ManualSnapshotSource) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

type manualSubscription struct {
	source *ManualSnapshotSource
	id     int
	once   sync.Once
}

func (m *manualSubscription) Close() error {
	m.once.Do(func() {
		m.source.mu.Lock()
		delete(m.source.listeners, m.id)
		m.source.Closed++
		m.source.mu.Unlock()
	})
	return nil
}
