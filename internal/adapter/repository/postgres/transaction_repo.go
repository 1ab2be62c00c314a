package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/postgres/generated"
)

// Retrier re-runs an operation on transient errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

type noRetry struct{}

func (noRetry) Retry(_ context.Context, operation func() error) error { return operation() }

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
	retrier Retrier
}

// NewTransactionRepository creates a new TransactionRepository. A nil
// retrier runs every query once.
func NewTransactionRepository(db generated.DBTX, retrier Retrier) *TransactionRepository {
	if retrier == nil {
		retrier = noRetry{}
	}
	return &TransactionRepository{
		queries: generated.New(db),
		retrier: retrier,
	}
}

// Create inserts a new transaction.
func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	err := r.retrier.Retry(ctx, func() error {
		return r.queries.CreateTransaction(ctx, generated.CreateTransactionParams{
			ID:        t.ID,
			OwnerID:   t.OwnerID,
			Type:      string(t.Type),
			Category:  t.Category,
			Amount:    decimalToNumeric(t.Amount),
			CreatedAt: timeToPgTimestamptz(t.CreatedAt),
		})
	})
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	return rowToTransaction(row), nil
}

// Update overwrites type, category and amount.
func (r *TransactionRepository) Update(ctx context.Context, t *domain.Transaction) error {
	var affected int64
	err := r.retrier.Retry(ctx, func() error {
		var err error
		affected, err = r.queries.UpdateTransaction(ctx, generated.UpdateTransactionParams{
			ID:       t.ID,
			Type:     string(t.Type),
			Category: t.Category,
			Amount:   decimalToNumeric(t.Amount),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if affected == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// Delete removes a transaction.
func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	var affected int64
	err := r.retrier.Retry(ctx, func() error {
		var err error
		affected, err = r.queries.DeleteTransaction(ctx, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if affected == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// ListByOwner returns the owner's transactions ordered by created_at, id.
func (r *TransactionRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListTransactionsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	out := make([]*domain.Transaction, len(rows))
	for i, row := range rows {
		out[i] = rowToTransaction(row)
	}
	return out, nil
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		Type:      domain.NormalizeStoredType(row.Type),
		Category:  row.Category,
		Amount:    numericToDecimal(row.Amount),
		CreatedAt: row.CreatedAt.Time,
	}
}
