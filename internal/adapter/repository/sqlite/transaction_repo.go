package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
)

// Retrier re-runs an operation on transient errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

type noRetry struct{}

func (noRetry) Retry(_ context.Context, operation func() error) error { return operation() }

type transactionRow struct {
	ID        string `db:"id"`
	OwnerID   string `db:"owner_id"`
	Type      string `db:"type"`
	Category  string `db:"category"`
	Amount    string `db:"amount"`
	CreatedAt int64  `db:"created_at"`
}

func (r transactionRow) toDomain() (*domain.Transaction, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return nil, fmt.Errorf("transaction %s has malformed amount %q: %w", r.ID, r.Amount, err)
	}
	return &domain.Transaction{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Type:      domain.NormalizeStoredType(r.Type),
		Category:  r.Category,
		Amount:    amount,
		CreatedAt: time.UnixMilli(r.CreatedAt).UTC(),
	}, nil
}

func toTransactionRow(t *domain.Transaction) transactionRow {
	return transactionRow{
		ID:        t.ID,
		OwnerID:   t.OwnerID,
		Type:      string(t.Type),
		Category:  t.Category,
		Amount:    t.Amount.String(),
		CreatedAt: t.CreatedAt.UnixMilli(),
	}
}

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	db      *sqlx.DB
	retrier Retrier
}

// NewTransactionRepository creates a new TransactionRepository. A nil
// retrier runs every statement once.
func NewTransactionRepository(db *sqlx.DB, retrier Retrier) *TransactionRepository {
	if retrier == nil {
		retrier = noRetry{}
	}
	return &TransactionRepository{db: db, retrier: retrier}
}

// Create inserts a new transaction.
func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	const query = `
		INSERT INTO transactions (id, owner_id, type, category, amount, created_at)
		VALUES (:id, :owner_id, :type, :category, :amount, :created_at)
	`
	row := toTransactionRow(t)
	err := r.retrier.Retry(ctx, func() error {
		_, err := r.db.NamedExecContext(ctx, query, row)
		return err
	})
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	const query = `
		SELECT id, owner_id, type, category, amount, created_at
		FROM transactions
		WHERE id = ?
	`
	var row transactionRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return row.toDomain()
}

// Update overwrites type, category and amount.
func (r *TransactionRepository) Update(ctx context.Context, t *domain.Transaction) error {
	const query = `
		UPDATE transactions
		SET type = :type, category = :category, amount = :amount
		WHERE id = :id
	`
	return r.execOne(ctx, "update transaction", func() (sql.Result, error) {
		return r.db.NamedExecContext(ctx, query, toTransactionRow(t))
	})
}

// Delete removes a transaction.
func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM transactions WHERE id = ?`
	return r.execOne(ctx, "delete transaction", func() (sql.Result, error) {
		return r.db.ExecContext(ctx, query, id)
	})
}

func (r *TransactionRepository) execOne(ctx context.Context, op string, exec func() (sql.Result, error)) error {
	var affected int64
	err := r.retrier.Retry(ctx, func() error {
		res, err := exec()
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// ListByOwner returns the owner's transactions ordered by created_at, id.
func (r *TransactionRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Transaction, error) {
	const query = `
		SELECT id, owner_id, type, category, amount, created_at
		FROM transactions
		WHERE owner_id = ?
		ORDER BY created_at, id
	`
	var rows []transactionRow
	if err := r.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	out := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
