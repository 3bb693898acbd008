package memory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"teller-proxy/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertTransactionsIsIdempotent(t *testing.T) {
	store := NewCacheStore()
	ctx := context.Background()

	batch := []models.Transaction{
		{ID: "txn_1", Date: time.Now(), Description: "coffee", Amount: decimal.NewFromInt(-4)},
		{ID: "txn_2", Date: time.Now(), Description: "rent", Amount: decimal.NewFromInt(-900)},
	}

	require.NoError(t, store.UpsertTransactions(ctx, "acc_1", batch))
	assert.Equal(t, 2, store.TransactionCount("acc_1"))

	// Re-running the same batch is a no-op.
	require.NoError(t, store.UpsertTransactions(ctx, "acc_1", batch))
	assert.Equal(t, 2, store.TransactionCount("acc_1"))

	// An existing id is never overwritten.
	changed := []models.Transaction{
		{ID: "txn_1", Date: time.Now(), Description: "CHANGED", Amount: decimal.NewFromInt(999)},
	}
	require.NoError(t, store.UpsertTransactions(ctx, "acc_1", changed))

	txns, err := store.RecentTransactions(ctx, "acc_1", 100)
	require.NoError(t, err)
	for _, txn := range txns {
		assert.NotEqual(t, "CHANGED", txn.Description)
	}
}

func TestRecentTransactionsOrderAndLimit(t *testing.T) {
	store := NewCacheStore()
	ctx := context.Background()

	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	var batch []models.Transaction
	for i := 0; i < 5; i++ {
		batch = append(batch, models.Transaction{
			ID:     string(rune('a' + i)),
			Date:   base.AddDate(0, 0, i),
			Amount: decimal.NewFromInt(int64(i)),
		})
	}
	require.NoError(t, store.UpsertTransactions(ctx, "acc_1", batch))

	txns, err := store.RecentTransactions(ctx, "acc_1", 3)
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, "e", txns[0].ID)
	assert.Equal(t, "d", txns[1].ID)
	assert.Equal(t, "c", txns[2].ID)
}

func TestLatestBalancePicksNewestSnapshot(t *testing.T) {
	store := NewCacheStore()
	ctx := context.Background()

	old := models.BalanceSnapshot{
		AccountID: "acc_1",
		Available: decimal.NewFromInt(100),
		Ledger:    decimal.NewFromInt(100),
		AsOf:      time.Now().Add(-time.Hour),
		Raw:       json.RawMessage(`{"available":"100"}`),
	}
	latest := models.BalanceSnapshot{
		AccountID: "acc_1",
		Available: decimal.NewFromInt(250),
		Ledger:    decimal.NewFromInt(250),
		AsOf:      time.Now(),
		Raw:       json.RawMessage(`{"available":"250"}`),
	}
	require.NoError(t, store.AddBalanceSnapshot(ctx, old))
	require.NoError(t, store.AddBalanceSnapshot(ctx, latest))

	got, err := store.LatestBalance(ctx, "acc_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Available.Equal(decimal.NewFromInt(250)))
}

func TestLatestBalanceEmpty(t *testing.T) {
	store := NewCacheStore()
	got, err := store.LatestBalance(context.Background(), "acc_none")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpsertAccountUpdatesFields(t *testing.T) {
	store := NewCacheStore()
	ctx := context.Background()

	require.NoError(t, store.UpsertAccount(ctx, models.Account{ID: "acc_1", Name: "Checking", LastFour: "1234"}))
	require.NoError(t, store.UpsertAccount(ctx, models.Account{ID: "acc_1", Name: "LLC Checking", LastFour: "1234"}))

	store.mu.Lock()
	acct := store.accounts["acc_1"]
	store.mu.Unlock()
	assert.Equal(t, "LLC Checking", acct.Name)
}
