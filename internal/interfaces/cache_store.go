package interfaces

import (
	"context"

	"teller-proxy/internal/models"
)

// CacheStore persists data fetched from Teller. It is a write-through
// cache: rows are only ever written after a successful upstream fetch.
type CacheStore interface {
	// UpsertAccount inserts the account or updates its fields if the id
	// is already stored.
	UpsertAccount(ctx context.Context, acct models.Account) error

	// AddBalanceSnapshot appends a new point-in-time balance row.
	AddBalanceSnapshot(ctx context.Context, snap models.BalanceSnapshot) error

	// UpsertTransactions inserts the given transactions, skipping any id
	// that is already stored. Existing rows are never overwritten.
	UpsertTransactions(ctx context.Context, accountID string, txns []models.Transaction) error

	// LatestBalance returns the most recent snapshot for the account by
	// as-of descending, or nil when none is stored.
	LatestBalance(ctx context.Context, accountID string) (*models.BalanceSnapshot, error)

	// RecentTransactions returns up to limit transactions for the account
	// by date descending.
	RecentTransactions(ctx context.Context, accountID string, limit int) ([]models.Transaction, error)
}
