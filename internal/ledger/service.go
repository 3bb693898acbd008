// Package ledger implements the LLC bookkeeping rules: the asset/liability
// balance sign convention, full-replace transaction writes and rent-month
// total recomputation.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"teller-proxy/internal/interfaces"
	"teller-proxy/internal/models"

	"github.com/shopspring/decimal"
)

// Service owns every derived-state rule of the ledger. All mutations go
// through here so that stored balances and rent totals never drift from
// their transaction sets.
type Service struct {
	store interfaces.LedgerStore
}

func NewService(store interfaces.LedgerStore) *Service {
	return &Service{store: store}
}

// ComputeBalance folds the transaction set from zero, in input order.
// Assets grow with debits, liabilities grow with credits.
func ComputeBalance(accountType string, txns []models.LedgerTransaction) decimal.Decimal {
	balance := decimal.Zero
	for _, t := range txns {
		if accountType == models.AccountTypeLiability {
			balance = balance.Add(t.Credit).Sub(t.Debit)
		} else {
			balance = balance.Add(t.Debit).Sub(t.Credit)
		}
	}
	return balance
}

// ComputeRentTotal sums the determined monthly-rent figures; nil entries
// are the "TBD" sentinel and do not count.
func ComputeRentTotal(records []models.RentRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if r.MonthlyRent != nil {
			total = total.Add(*r.MonthlyRent)
		}
	}
	return total
}

// ParseMonthlyRent reads a monthly-rent JSON value. null, "" and the
// literal "TBD" placeholder mean undetermined and map to nil; anything
// else must parse as a decimal amount.
func ParseMonthlyRent(raw json.RawMessage) (*decimal.Decimal, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("invalid monthly_rent value: %w", err)
	}

	switch val := v.(type) {
	case string:
		if val == "" || val == "TBD" {
			return nil, nil
		}
		d, err := decimal.NewFromString(val)
		if err != nil {
			return nil, fmt.Errorf("invalid monthly_rent value %q: %w", val, err)
		}
		return &d, nil
	case float64:
		d := decimal.NewFromFloat(val)
		return &d, nil
	default:
		return nil, fmt.Errorf("invalid monthly_rent value %s", raw)
	}
}

// ParseMonth reads a YYYY-MM path segment into the month-start date. The
// day component is fixed to the 2nd of the month by convention.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return time.Date(t.Year(), t.Month(), 2, 0, 0, 0, 0, time.UTC), nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]models.LedgerAccount, error) {
	return s.store.ListAccounts(ctx)
}

// UpsertAccount saves account metadata by slug and, when supplied, replaces
// the transaction set and upserts the financing terms. The balance is always
// recomputed under the account's current type, so a type change alone is
// enough to flip the stored sign. The returned account reflects the stored
// state including the recomputed balance.
func (s *Service) UpsertAccount(ctx context.Context, acct models.LedgerAccount) (*models.LedgerAccount, error) {
	if acct.AccountType == "" {
		acct.AccountType = models.AccountTypeAsset
	}

	if err := s.store.SaveAccount(ctx, &acct); err != nil {
		return nil, err
	}

	if acct.Transactions == nil {
		stored, err := s.store.GetTransactions(ctx, acct.ID)
		if err != nil {
			return nil, err
		}
		acct.Transactions = stored
	}

	balance := ComputeBalance(acct.AccountType, acct.Transactions)
	if err := s.store.ReplaceTransactions(ctx, acct.ID, acct.Transactions, balance); err != nil {
		return nil, err
	}

	if acct.Financing != nil {
		if err := s.store.UpsertFinancing(ctx, acct.ID, *acct.Financing); err != nil {
			return nil, err
		}
	}

	return s.store.GetAccountBySlug(ctx, acct.Slug)
}

// ReplaceTransactions swaps the account's full transaction set and persists
// the recomputed balance. Returns interfaces.ErrNotFound for an unknown
// account, with nothing written.
func (s *Service) ReplaceTransactions(ctx context.Context, accountID int64, txns []models.LedgerTransaction) (decimal.Decimal, error) {
	acct, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	balance := ComputeBalance(acct.AccountType, txns)
	if err := s.store.ReplaceTransactions(ctx, accountID, txns, balance); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

func (s *Service) Transactions(ctx context.Context, accountID int64) ([]models.LedgerTransaction, error) {
	if _, err := s.store.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return s.store.GetTransactions(ctx, accountID)
}

func (s *Service) Tenants(ctx context.Context) ([]models.RentTenant, error) {
	return s.store.ListTenants(ctx)
}

func (s *Service) RentMonth(ctx context.Context, monthStart time.Time) (*models.RentMonth, error) {
	return s.store.GetRentMonth(ctx, monthStart)
}

// SaveRentMonth replaces the month's records and upserts its total.
func (s *Service) SaveRentMonth(ctx context.Context, monthStart time.Time, records []models.RentRecord) (*models.RentMonth, error) {
	total := ComputeRentTotal(records)
	month := models.RentMonth{
		MonthStart: monthStart,
		Records:    records,
		Total:      &total,
	}
	if err := s.store.SaveRentMonth(ctx, month); err != nil {
		return nil, err
	}
	return s.store.GetRentMonth(ctx, monthStart)
}
