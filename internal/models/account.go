package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Account mirrors a Teller account. It is a cache row, not the source of
// truth; every field besides the id may be rewritten on the next upsert.
type Account struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	InstitutionID string    `json:"institution_id"`
	Type          string    `json:"type"`
	Subtype       string    `json:"subtype"`
	LastFour      string    `json:"last_four"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BalanceSnapshot is one point-in-time balance fetched from Teller.
// Raw keeps the upstream payload verbatim.
type BalanceSnapshot struct {
	ID        int64           `json:"id"`
	AccountID string          `json:"account_id"`
	Available decimal.Decimal `json:"available"`
	Ledger    decimal.Decimal `json:"ledger"`
	AsOf      time.Time       `json:"as_of"`
	Raw       json.RawMessage `json:"raw"`
}

// Transaction is a cached Teller transaction, keyed by the upstream id.
// Rows are insert-only; a known id is never overwritten.
type Transaction struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Raw         json.RawMessage `json:"raw"`
}
