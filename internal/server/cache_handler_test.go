package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"teller-proxy/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedTransactionsNewestFirstWithLimit(t *testing.T) {
	env := newTestEnv(t, "http://teller.invalid")
	ctx := context.Background()

	txns := []models.Transaction{
		{ID: "txn_a", Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Raw: json.RawMessage(`{"id":"txn_a"}`)},
		{ID: "txn_b", Date: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), Raw: json.RawMessage(`{"id":"txn_b"}`)},
		{ID: "txn_c", Date: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), Raw: json.RawMessage(`{"id":"txn_c"}`)},
	}
	require.NoError(t, env.cache.UpsertTransactions(ctx, "acc_1", txns))

	rec := env.request(t, http.MethodGet, "/api/db/accounts/acc_1/transactions?limit=2", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"txn_b"},{"id":"txn_c"}]`, rec.Body.String())
}

func TestCachedTransactionsInvalidLimitFallsBack(t *testing.T) {
	env := newTestEnv(t, "http://teller.invalid")

	rec := env.request(t, http.MethodGet, "/api/db/accounts/acc_1/transactions?limit=bogus", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCachedBalancesLatestSnapshot(t *testing.T) {
	env := newTestEnv(t, "http://teller.invalid")
	ctx := context.Background()

	require.NoError(t, env.cache.AddBalanceSnapshot(ctx, models.BalanceSnapshot{
		AccountID: "acc_1",
		Available: decimal.RequireFromString("90"),
		Ledger:    decimal.RequireFromString("95"),
		AsOf:      time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, env.cache.AddBalanceSnapshot(ctx, models.BalanceSnapshot{
		AccountID: "acc_1",
		Available: decimal.RequireFromString("110.75"),
		Ledger:    decimal.RequireFromString("115"),
		AsOf:      time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
	}))

	rec := env.request(t, http.MethodGet, "/api/db/accounts/acc_1/balances", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"available":"110.75","ledger":"115"}`, rec.Body.String())
}

func TestCachedBalancesEmpty(t *testing.T) {
	env := newTestEnv(t, "http://teller.invalid")

	rec := env.request(t, http.MethodGet, "/api/db/accounts/acc_unknown/balances", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}
