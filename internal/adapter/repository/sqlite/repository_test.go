package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/retry"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "fintrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTx(id, owner string, typ domain.TransactionType, category, amount string, at time.Time) *domain.Transaction {
	return &domain.Transaction{
		ID: id, OwnerID: owner, Type: typ, Category: category,
		Amount: decimal.RequireFromString(amount), CreatedAt: at,
	}
}

func TestTransactionRepository_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewTransactionRepository(db, nil)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 123_000_000, time.UTC)
	require.NoError(t, repo.Create(ctx, newTx("b", "u", domain.TransactionTypeExpense, "Supermercado", "45.90", base)))
	require.NoError(t, repo.Create(ctx, newTx("a", "u", domain.TransactionTypeIncome, "Salário", "3000", base)))
	require.NoError(t, repo.Create(ctx, newTx("c", "u", domain.TransactionTypeIncome, "Juros", "1.5", base.Add(-time.Hour))))
	require.NoError(t, repo.Create(ctx, newTx("z", "other", domain.TransactionTypeIncome, "Juros", "9", base)))

	got, err := repo.ListByOwner(ctx, "u")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{got[0].ID, got[1].ID, got[2].ID}, "ordered by created_at then id")
	assert.True(t, got[2].Amount.Equal(decimal.RequireFromString("45.90")))
	assert.True(t, got[1].CreatedAt.Equal(base), "millisecond precision is kept")

	one, err := repo.GetByID(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "Supermercado", one.Category)
	assert.Equal(t, domain.TransactionTypeExpense, one.Type)
}

func TestTransactionRepository_UpdateDelete(t *testing.T) {
	db := openTestDB(t)
	repo := NewTransactionRepository(db, nil)
	ctx := context.Background()

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, newTx("t1", "u", domain.TransactionTypeExpense, "Gás", "10", at)))

	changed := newTx("t1", "u", domain.TransactionTypeIncome, "Reembolso", "11.25", at.Add(time.Hour))
	require.NoError(t, repo.Update(ctx, changed))

	got, err := repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeIncome, got.Type)
	assert.Equal(t, "Reembolso", got.Category)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("11.25")))
	assert.True(t, got.CreatedAt.Equal(at), "creation time is not updated")

	require.NoError(t, repo.Delete(ctx, "t1"))
	_, err = repo.GetByID(ctx, "t1")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "t1"), domain.ErrTransactionNotFound)
	assert.ErrorIs(t, repo.Update(ctx, changed), domain.ErrTransactionNotFound)
}

func TestTransactionRepository_NormalizesLegacyTypes(t *testing.T) {
	db := openTestDB(t)
	repo := NewTransactionRepository(db, nil)
	ctx := context.Background()

	at := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC).UnixMilli()
	for _, row := range []struct{ id, typ string }{{"l1", "ganho"}, {"l2", "Gasto"}, {"l3", "transfer"}} {
		_, err := db.ExecContext(ctx,
			`INSERT INTO transactions (id, owner_id, type, category, amount, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			row.id, "u", row.typ, "Outros", "10", at)
		require.NoError(t, err)
	}

	got, err := repo.ListByOwner(ctx, "u")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, domain.TransactionTypeIncome, got[0].Type)
	assert.Equal(t, domain.TransactionTypeExpense, got[1].Type)
	assert.Equal(t, domain.TransactionType("transfer"), got[2].Type, "unknown types are kept as stored")

	one, err := repo.GetByID(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeIncome, one.Type)
}

func TestOpen_ReappliesMigrationsIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, NewTransactionRepository(db, nil).Create(context.Background(),
		newTx("keep", "u", domain.TransactionTypeIncome, "Juros", "1", time.Now())))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	got, err := NewTransactionRepository(db, nil).ListByOwner(context.Background(), "u")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestUserRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	user := &domain.User{ID: "u1", Email: "ana@example.com", Name: "Ana", HashedPassword: "hash", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(ctx, user))

	byEmail, err := repo.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)
	assert.True(t, byEmail.CreatedAt.Equal(now))

	byID, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", byID.Name)

	dup := *user
	dup.ID = "u2"
	assert.ErrorIs(t, repo.Create(ctx, &dup), domain.ErrEmailTaken)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

type busyError struct{}

func (busyError) Error() string { return "database is locked" }
func (busyError) Code() int     { return 5 | (1 << 8) } // SQLITE_BUSY_RECOVERY

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(busyError{}))
	assert.False(t, IsRetryable(errors.New("boom")))
}

func TestTransactionRepository_RetriesBusy(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(mockDB, "sqlmock")
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM transactions")).
		WithArgs("t1").
		WillReturnError(busyError{})
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM transactions")).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	retrier := retry.New(retry.Config{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
		MaxElapsedTime:  time.Second,
	}, IsRetryable, zerolog.Nop())

	repo := NewTransactionRepository(db, retrier)
	require.NoError(t, repo.Delete(context.Background(), "t1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
