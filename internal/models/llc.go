package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger account types. The type decides the balance sign convention:
// assets grow with debits, liabilities grow with credits.
const (
	AccountTypeAsset     = "asset"
	AccountTypeLiability = "liability"
)

// LedgerAccount is an internal LLC bookkeeping account, distinct from the
// cached Teller accounts. CurrentBalance is derived state: it always equals
// the fold of Transactions under the sign rule for AccountType.
type LedgerAccount struct {
	ID             int64               `json:"account_id"`
	Slug           string              `json:"slug"`
	Name           string              `json:"name"`
	Subtitle       string              `json:"subtitle,omitempty"`
	AccountType    string              `json:"account_type"`
	CurrentBalance decimal.Decimal     `json:"current_balance"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Transactions   []LedgerTransaction `json:"transactions,omitempty"`
	Financing      *FinancingTerms     `json:"financing_terms,omitempty"`
}

// LedgerTransaction is one debit/credit line on a ledger account. The full
// set is replaced on every bulk write; rows are never edited in place.
type LedgerTransaction struct {
	ID          int64           `json:"transaction_id,omitempty"`
	AccountID   int64           `json:"-"`
	Date        time.Time       `json:"txn_date"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// FinancingTerms describes the loan behind a ledger account, one per
// account. Breakdown and MemberLoans are owned rows, fully replaced when
// supplied on an upsert.
type FinancingTerms struct {
	ID           int64            `json:"financing_id,omitempty"`
	AccountID    int64            `json:"-"`
	Principal    decimal.Decimal  `json:"principal"`
	InterestRate decimal.Decimal  `json:"interest_rate"`
	TermYears    int              `json:"term_years"`
	Breakdown    []BreakdownEntry `json:"-"`
	MemberLoans  []MemberLoan     `json:"-"`
}

// BreakdownEntry is one labeled slice of a financing principal.
type BreakdownEntry struct {
	Label  string
	Amount decimal.Decimal
}

// MemberLoan is the portion of a financing carried by one LLC member.
type MemberLoan struct {
	MemberName string
	Amount     decimal.Decimal
}

// Member is an LLC member, unique by name.
type Member struct {
	ID   int64  `json:"member_id"`
	Name string `json:"name"`
}

// RentTenant is a rentable unit's occupant. BaseID is the stable external
// identifier the frontend keys records by.
type RentTenant struct {
	ID         int64  `json:"tenant_id"`
	BaseID     int    `json:"base_id"`
	Floor      string `json:"floor"`
	RenterName string `json:"renter_name"`
}

// RentMonth groups the rent records for one month. MonthStart is unique;
// by convention the day component is fixed to the 2nd. Total is derived
// state recomputed on every write.
type RentMonth struct {
	ID         int64            `json:"rent_month_id"`
	MonthStart time.Time        `json:"month_start"`
	Records    []RentRecord     `json:"records"`
	Total      *decimal.Decimal `json:"total_monthly_rent,omitempty"`
}

// RentRecord is one tenant's row in a rent month. A nil MonthlyRent means
// "amount not yet determined" and is excluded from the month total.
type RentRecord struct {
	ID             int64            `json:"-"`
	RentMonthID    int64            `json:"-"`
	TenantBaseID   int              `json:"id"`
	MonthlyRent    *decimal.Decimal `json:"monthly_rent"`
	AmountDue      decimal.Decimal  `json:"amount_due"`
	AmountReceived decimal.Decimal  `json:"amount_received"`
}
