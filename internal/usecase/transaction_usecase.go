package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
)

// TransactionUseCase handles owner-scoped transaction writes and reads.
type TransactionUseCase struct {
	repo      TransactionRepository
	idGen     IDGenerator
	feed      ChangeFeed
	publisher EventPublisher
	metrics   Recorder
	logger    zerolog.Logger
	now       func() time.Time
}

// TransactionUseCaseConfig wires the collaborators of a TransactionUseCase.
// Feed, Publisher and Metrics are optional.
type TransactionUseCaseConfig struct {
	Repo      TransactionRepository
	IDGen     IDGenerator
	Feed      ChangeFeed
	Publisher EventPublisher
	Metrics   Recorder
	Logger    zerolog.Logger
	Now       func() time.Time
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(cfg TransactionUseCaseConfig) *TransactionUseCase {
	if cfg.Metrics == nil {
		cfg.Metrics = NopRecorder{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &TransactionUseCase{
		repo:      cfg.Repo,
		idGen:     cfg.IDGen,
		feed:      cfg.Feed,
		publisher: cfg.Publisher,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
}

// CreateTransactionInput represents input for creating a transaction.
type CreateTransactionInput struct {
	OwnerID  string
	Type     domain.TransactionType
	Category string
	Amount   decimal.Decimal
}

// UpdateTransactionInput represents input for editing a transaction.
// Owner and creation time are immutable.
type UpdateTransactionInput struct {
	OwnerID  string
	ID       string
	Type     domain.TransactionType
	Category string
	Amount   decimal.Decimal
}

// Create validates and stores a new transaction for the owner.
func (uc *TransactionUseCase) Create(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	if input.OwnerID == "" {
		return nil, domain.ErrUnauthorized
	}

	t := &domain.Transaction{
		ID:        uc.idGen.Generate(),
		OwnerID:   input.OwnerID,
		Type:      input.Type,
		Category:  input.Category,
		Amount:    input.Amount,
		CreatedAt: uc.now().UTC(),
	}
	if err := domain.ValidateTransaction(t); err != nil {
		uc.metrics.TransactionMutation(OperationCreate, StatusFailure)
		return nil, err
	}

	if err := uc.repo.Create(ctx, t); err != nil {
		uc.metrics.TransactionMutation(OperationCreate, StatusFailure)
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if !domain.IsCatalogued(t.Type, t.Category) {
		uc.logger.Debug().
			Str("transaction_id", t.ID).
			Str("category", t.Category).
			Msg("transaction uses a category outside the catalog")
	}

	uc.metrics.TransactionMutation(OperationCreate, StatusSuccess)
	uc.afterWrite(ctx, domain.EventTypeTransactionCreated, t)
	return t, nil
}

// Update replaces type, category and amount of an owned transaction.
func (uc *TransactionUseCase) Update(ctx context.Context, input UpdateTransactionInput) (*domain.Transaction, error) {
	if input.OwnerID == "" {
		return nil, domain.ErrUnauthorized
	}

	existing, err := uc.owned(ctx, input.OwnerID, input.ID)
	if err != nil {
		uc.metrics.TransactionMutation(OperationUpdate, StatusFailure)
		return nil, err
	}

	updated := *existing
	updated.Type = input.Type
	updated.Category = input.Category
	updated.Amount = input.Amount
	if err := domain.ValidateTransaction(&updated); err != nil {
		uc.metrics.TransactionMutation(OperationUpdate, StatusFailure)
		return nil, err
	}

	if err := uc.repo.Update(ctx, &updated); err != nil {
		uc.metrics.TransactionMutation(OperationUpdate, StatusFailure)
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	uc.metrics.TransactionMutation(OperationUpdate, StatusSuccess)
	uc.afterWrite(ctx, domain.EventTypeTransactionUpdated, &updated)
	return &updated, nil
}

// Delete removes an owned transaction.
func (uc *TransactionUseCase) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return domain.ErrUnauthorized
	}

	existing, err := uc.owned(ctx, ownerID, id)
	if err != nil {
		uc.metrics.TransactionMutation(OperationDelete, StatusFailure)
		return err
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		uc.metrics.TransactionMutation(OperationDelete, StatusFailure)
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	uc.metrics.TransactionMutation(OperationDelete, StatusSuccess)
	uc.afterWrite(ctx, domain.EventTypeTransactionDeleted, existing)
	return nil
}

// Get returns one owned transaction.
func (uc *TransactionUseCase) Get(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	return uc.owned(ctx, ownerID, id)
}

// List returns the owner's full snapshot.
func (uc *TransactionUseCase) List(ctx context.Context, ownerID string) ([]*domain.Transaction, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}

	ts, err := uc.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return ts, nil
}

// owned loads id and hides transactions of other owners as not found.
func (uc *TransactionUseCase) owned(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
	t, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", id, err)
	}
	if t.OwnerID != ownerID {
		return nil, domain.ErrTransactionNotFound
	}
	return t, nil
}

// afterWrite signals live subscribers and publishes the event. The write is
// already committed, so failures are only logged.
func (uc *TransactionUseCase) afterWrite(ctx context.Context, eventType string, t *domain.Transaction) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultNotifyTimeout)
	defer cancel()

	if uc.feed != nil {
		if err := uc.feed.Notify(ctx, t.OwnerID); err != nil {
			uc.logger.Warn().Err(err).
				Str("owner_id", t.OwnerID).
				Str("event_type", eventType).
				Msg("failed to notify change feed")
		}
	}

	if uc.publisher != nil {
		event := domain.NewTransactionEvent(uc.idGen.Generate(), eventType, t, uc.now())
		if err := uc.publisher.Publish(ctx, event); err != nil {
			uc.logger.Warn().Err(err).
				Str("event_id", event.ID).
				Str("event_type", eventType).
				Msg("failed to publish transaction event")
		}
	}
}
