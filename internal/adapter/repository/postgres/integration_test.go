package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repo "github.com/iho/fintrack/internal/adapter/repository/postgres"
	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/idgen"
	"github.com/iho/fintrack/internal/infrastructure/postgres"
	"github.com/iho/fintrack/internal/infrastructure/retry"
)

// newTestPool connects to DATABASE_URL, migrates it and empties the tables.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	require.NoError(t, postgres.RunMigrations(dbURL, zerolog.Nop()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dbURL, 10, 1)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE TABLE transactions, users`)
	require.NoError(t, err)
	return pool
}

func TestIntegration_TransactionLifecycle(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	txs := repo.NewTransactionRepository(pool, retry.New(retry.DefaultConfig(), repo.IsRetryable, zerolog.Nop()))

	created := &domain.Transaction{
		ID: "tx-1", OwnerID: "ana", Type: domain.TransactionTypeExpense,
		Category: "Condomínio", Amount: decimal.RequireFromString("850.40"),
		CreatedAt: time.Date(2024, 2, 29, 23, 30, 0, 0, time.UTC),
	}
	require.NoError(t, txs.Create(ctx, created))

	got, err := txs.GetByID(ctx, "tx-1")
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(created.Amount))
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt))

	got.Category = "Aluguel"
	got.Amount = decimal.NewFromInt(900)
	require.NoError(t, txs.Update(ctx, got))

	list, err := txs.ListByOwner(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Aluguel", list[0].Category)

	require.NoError(t, txs.Delete(ctx, "tx-1"))
	_, err = txs.GetByID(ctx, "tx-1")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
	assert.ErrorIs(t, txs.Delete(ctx, "tx-1"), domain.ErrTransactionNotFound)
}

func TestIntegration_ConcurrentCreates(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	txs := repo.NewTransactionRepository(pool, nil)
	ids := idgen.NewULIDGenerator()

	const writers = 50
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			owner := "ana"
			if i%2 == 1 {
				owner = "bia"
			}
			errs <- txs.Create(ctx, &domain.Transaction{
				ID: ids.Generate(), OwnerID: owner, Type: domain.TransactionTypeIncome,
				Category: fmt.Sprintf("Renda %d", i), Amount: decimal.NewFromInt(int64(i + 1)),
				CreatedAt: time.Now().UTC(),
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	ana, err := txs.ListByOwner(ctx, "ana")
	require.NoError(t, err)
	bia, err := txs.ListByOwner(ctx, "bia")
	require.NoError(t, err)
	assert.Len(t, ana, writers/2)
	assert.Len(t, bia, writers/2)
	for _, tx := range ana {
		assert.Equal(t, "ana", tx.OwnerID)
	}
}

func TestIntegration_UserEmailIsUnique(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	users := repo.NewUserRepository(pool)

	u := &domain.User{ID: "u1", Email: "ana@example.com", Name: "Ana", HashedPassword: "x", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	require.NoError(t, users.Create(ctx, u))

	dup := *u
	dup.ID = "u2"
	err := users.Create(ctx, &dup)
	assert.True(t, errors.Is(err, domain.ErrEmailTaken), "got %v", err)

	found, err := users.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", found.ID)
}
