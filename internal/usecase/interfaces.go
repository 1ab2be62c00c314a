package usecase

import (
	"context"
	"time"

	"github.com/iho/fintrack/internal/domain"
)

// TransactionRepository defines data access for transactions.
type TransactionRepository interface {
	Create(ctx context.Context, t *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	// Update overwrites type, category and amount. It returns
	// domain.ErrTransactionNotFound when no row matched.
	Update(ctx context.Context, t *domain.Transaction) error
	Delete(ctx context.Context, id string) error
	// ListByOwner returns the owner's full snapshot ordered by created_at, id.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Transaction, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ChangeFeed signals that an owner's transactions changed.
type ChangeFeed interface {
	Notify(ctx context.Context, ownerID string) error
	// Listen delivers one value per change. The channel is closed once ctx
	// is done.
	Listen(ctx context.Context, ownerID string) (<-chan struct{}, error)
}

// EventPublisher publishes transaction events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.TransactionEvent) error
}

// Subscription is a live snapshot feed. Close stops delivery and waits for
// the listener to exit.
type Subscription interface {
	Close() error
}

// SnapshotSource pushes an owner's full transaction snapshot, once on
// subscribe and again after every change.
type SnapshotSource interface {
	Subscribe(ctx context.Context, ownerID string, onUpdate func([]*domain.Transaction)) (Subscription, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// Recorder collects domain metrics.
type Recorder interface {
	TransactionMutation(operation, status string)
	SummaryComputed(d time.Duration)
	ExportGenerated(format string)
	LiveSubscriptions(delta int)
	AuthAttempt(kind, status string)
}

// NopRecorder discards every measurement.
type NopRecorder struct{}

func (NopRecorder) TransactionMutation(string, string) {}
func (NopRecorder) SummaryComputed(time.Duration)      {}
func (NopRecorder) ExportGenerated(string)             {}
func (NopRecorder) LiveSubscriptions(int)              {}
func (NopRecorder) AuthAttempt(string, string)         {}
