package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
)

// ErrDashboardClosed is returned by a Dashboard after Close.
var ErrDashboardClosed = errors.New("dashboard is closed")

// TransactionWriter is the write side a Dashboard forwards intents to.
type TransactionWriter interface {
	Create(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error)
	Update(ctx context.Context, input UpdateTransactionInput) (*domain.Transaction, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// TransactionDraft holds the user-editable fields of a transaction.
type TransactionDraft struct {
	Type     domain.TransactionType
	Category string
	Amount   decimal.Decimal
}

// DashboardConfig wires a Dashboard.
type DashboardConfig struct {
	OwnerID  string
	Source   SnapshotSource
	Writer   TransactionWriter
	Metrics  Recorder
	Location *time.Location
}

// Dashboard holds the filter state and live snapshot of one viewer. A push
// replaces the whole snapshot; every change of snapshot or criteria
// recomputes the summary and offers it on Updates.
type Dashboard struct {
	ownerID string
	source  SnapshotSource
	writer  TransactionWriter
	metrics Recorder
	loc     *time.Location

	mu       sync.Mutex
	criteria domain.Criteria
	snapshot []*domain.Transaction
	view     domain.Summary
	sub      Subscription
	updates  chan domain.Summary
	opened   bool
	closed   bool
}

// NewDashboard creates a Dashboard with cleared filters and an empty
// snapshot.
func NewDashboard(cfg DashboardConfig) *Dashboard {
	if cfg.Metrics == nil {
		cfg.Metrics = NopRecorder{}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	d := &Dashboard{
		ownerID:  cfg.OwnerID,
		source:   cfg.Source,
		writer:   cfg.Writer,
		metrics:  cfg.Metrics,
		loc:      cfg.Location,
		criteria: clearedCriteria(cfg.Location),
		updates:  make(chan domain.Summary, 1),
	}
	d.view = domain.Summarize(nil, d.criteria)
	return d
}

func clearedCriteria(loc *time.Location) domain.Criteria {
	return domain.Criteria{
		Type:     domain.FilterAll,
		Category: domain.FilterAll,
		Location: loc,
	}
}

// Open subscribes to the owner's snapshot. The first snapshot has been
// applied when Open returns.
func (d *Dashboard) Open(ctx context.Context) error {
	if d.ownerID == "" {
		return domain.ErrUnauthorized
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDashboardClosed
	}
	if d.opened {
		d.mu.Unlock()
		return nil
	}
	d.opened = true
	d.mu.Unlock()

	sub, err := d.source.Subscribe(ctx, d.ownerID, d.apply)
	if err != nil {
		d.mu.Lock()
		d.opened = false
		d.mu.Unlock()
		return fmt.Errorf("failed to subscribe to transactions: %w", err)
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return sub.Close()
	}
	d.sub = sub
	d.mu.Unlock()

	d.metrics.LiveSubscriptions(1)
	return nil
}

// Close releases the subscription and closes the updates channel. It is
// safe to call more than once.
func (d *Dashboard) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	sub := d.sub
	d.sub = nil
	close(d.updates)
	d.mu.Unlock()

	if sub == nil {
		return nil
	}
	d.metrics.LiveSubscriptions(-1)
	return sub.Close()
}

// Updates delivers recomputed summaries. Only the latest pending summary is
// kept for a slow reader. The channel is closed by Close.
func (d *Dashboard) Updates() <-chan domain.Summary {
	return d.updates
}

// View returns the current summary.
func (d *Dashboard) View() domain.Summary {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view
}

// Criteria returns the active criteria as set by the viewer.
func (d *Dashboard) Criteria() domain.Criteria {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.criteria
}

// SetCriteria replaces the filters and recomputes the view. A criteria
// without a location uses the dashboard's.
func (d *Dashboard) SetCriteria(c domain.Criteria) domain.Summary {
	if c.Location == nil {
		c.Location = d.loc
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.criteria = c
	d.recomputeLocked()
	return d.view
}

// ClearFilters resets every filter to all and recomputes the view.
func (d *Dashboard) ClearFilters() domain.Summary {
	return d.SetCriteria(clearedCriteria(d.loc))
}

// Create forwards a new transaction for the dashboard's owner. The view
// changes only when the store pushes the next snapshot.
func (d *Dashboard) Create(ctx context.Context, draft TransactionDraft) (*domain.Transaction, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	return d.writer.Create(ctx, CreateTransactionInput{
		OwnerID:  d.ownerID,
		Type:     draft.Type,
		Category: draft.Category,
		Amount:   draft.Amount,
	})
}

// Update forwards an edit of one of the owner's transactions.
func (d *Dashboard) Update(ctx context.Context, id string, draft TransactionDraft) (*domain.Transaction, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	return d.writer.Update(ctx, UpdateTransactionInput{
		OwnerID:  d.ownerID,
		ID:       id,
		Type:     draft.Type,
		Category: draft.Category,
		Amount:   draft.Amount,
	})
}

// Delete forwards the removal of one of the owner's transactions.
func (d *Dashboard) Delete(ctx context.Context, id string) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	return d.writer.Delete(ctx, d.ownerID, id)
}

func (d *Dashboard) checkOpen() error {
	if d.ownerID == "" {
		return domain.ErrUnauthorized
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDashboardClosed
	}
	return nil
}

// apply is the SnapshotSource callback.
func (d *Dashboard) apply(snapshot []*domain.Transaction) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.snapshot = snapshot
	d.recomputeLocked()
}

func (d *Dashboard) recomputeLocked() {
	start := time.Now()
	d.view = domain.Summarize(d.snapshot, d.criteria)
	d.metrics.SummaryComputed(time.Since(start))

	if d.closed {
		return
	}
	// Replace a pending stale view with the new one.
	select {
	case <-d.updates:
	default:
	}
	d.updates <- d.view
}
