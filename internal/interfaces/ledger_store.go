package interfaces

import (
	"context"
	"errors"
	"time"

	"teller-proxy/internal/models"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by stores when the referenced row does not exist.
var ErrNotFound = errors.New("not found")

// LedgerStore persists the internal LLC bookkeeping ledger. Mutating calls
// run in a single database transaction; a returned error means nothing was
// written.
type LedgerStore interface {
	ListAccounts(ctx context.Context) ([]models.LedgerAccount, error)
	GetAccount(ctx context.Context, id int64) (*models.LedgerAccount, error)
	GetAccountBySlug(ctx context.Context, slug string) (*models.LedgerAccount, error)

	// SaveAccount inserts the account or updates name/subtitle/type when
	// the slug is already stored. The account's ID is set on return.
	SaveAccount(ctx context.Context, acct *models.LedgerAccount) error

	// ReplaceTransactions deletes the account's transactions, inserts the
	// replacement set and persists the recomputed balance, all in one
	// transaction. Returns ErrNotFound when the account does not exist.
	ReplaceTransactions(ctx context.Context, accountID int64, txns []models.LedgerTransaction, balance decimal.Decimal) error

	GetTransactions(ctx context.Context, accountID int64) ([]models.LedgerTransaction, error)

	// UpsertFinancing updates the account's financing terms in place or
	// inserts them. A non-nil Breakdown or MemberLoans set fully replaces
	// the stored rows. Returns ErrNotFound when the account does not exist.
	UpsertFinancing(ctx context.Context, accountID int64, terms models.FinancingTerms) error

	ListTenants(ctx context.Context) ([]models.RentTenant, error)

	// GetRentMonth returns the month identified by its exact month-start
	// date, or ErrNotFound.
	GetRentMonth(ctx context.Context, monthStart time.Time) (*models.RentMonth, error)

	// SaveRentMonth finds or creates the month, replaces its records and
	// upserts the month total, all in one transaction.
	SaveRentMonth(ctx context.Context, month models.RentMonth) error
}
