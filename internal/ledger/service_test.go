package ledger

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"teller-proxy/internal/interfaces"
	"teller-proxy/internal/models"
	"teller-proxy/internal/storage/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeBalanceAssetAccount(t *testing.T) {
	txns := []models.LedgerTransaction{
		{Debit: dec("100"), Credit: decimal.Zero},
		{Debit: decimal.Zero, Credit: dec("30")},
	}
	balance := ComputeBalance(models.AccountTypeAsset, txns)
	assert.True(t, balance.Equal(dec("70")), "got %s", balance)
}

func TestComputeBalanceLiabilityAccount(t *testing.T) {
	txns := []models.LedgerTransaction{
		{Debit: dec("100"), Credit: decimal.Zero},
		{Debit: decimal.Zero, Credit: dec("30")},
	}
	balance := ComputeBalance(models.AccountTypeLiability, txns)
	assert.True(t, balance.Equal(dec("-70")), "got %s", balance)
}

func TestComputeBalanceEmptySet(t *testing.T) {
	assert.True(t, ComputeBalance(models.AccountTypeAsset, nil).IsZero())
}

func TestComputeRentTotalSkipsUndetermined(t *testing.T) {
	r500 := dec("500")
	r750 := dec("750")
	records := []models.RentRecord{
		{MonthlyRent: &r500},
		{MonthlyRent: nil}, // "TBD" and null both arrive here as nil
		{MonthlyRent: nil},
		{MonthlyRent: &r750},
	}
	total := ComputeRentTotal(records)
	assert.True(t, total.Equal(dec("1250")), "got %s", total)
}

func TestParseMonthlyRent(t *testing.T) {
	cases := []struct {
		raw  string
		want *string
	}{
		{`null`, nil},
		{`"TBD"`, nil},
		{`""`, nil},
		{`"500"`, ptr("500")},
		{`750`, ptr("750")},
		{`"1234.56"`, ptr("1234.56")},
	}

	for _, c := range cases {
		got, err := ParseMonthlyRent(json.RawMessage(c.raw))
		require.NoError(t, err, "input %s", c.raw)
		if c.want == nil {
			assert.Nil(t, got, "input %s", c.raw)
		} else {
			require.NotNil(t, got, "input %s", c.raw)
			assert.True(t, got.Equal(dec(*c.want)), "input %s: got %s", c.raw, got)
		}
	}
}

func TestParseMonthlyRentRejectsGarbage(t *testing.T) {
	_, err := ParseMonthlyRent(json.RawMessage(`"not-a-number"`))
	require.Error(t, err)

	_, err = ParseMonthlyRent(json.RawMessage(`{"x":1}`))
	require.Error(t, err)
}

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth("2025-07")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.July, 2, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseMonth("2025-7")
	require.Error(t, err)
	_, err = ParseMonth("july")
	require.Error(t, err)
}

func TestReplaceTransactionsRecomputesBalance(t *testing.T) {
	store := memory.NewLedgerStore()
	svc := NewService(store)
	ctx := context.Background()

	acct, err := svc.UpsertAccount(ctx, models.LedgerAccount{
		Slug:        "llc-bank",
		Name:        "LLC Checking",
		AccountType: models.AccountTypeAsset,
	})
	require.NoError(t, err)

	balance, err := svc.ReplaceTransactions(ctx, acct.ID, []models.LedgerTransaction{
		{Date: time.Now(), Description: "deposit", Debit: dec("100")},
		{Date: time.Now(), Description: "fee", Credit: dec("30")},
	})
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("70")))

	stored, err := store.GetAccount(ctx, acct.ID)
	require.NoError(t, err)
	assert.True(t, stored.CurrentBalance.Equal(dec("70")))
	assert.Len(t, stored.Transactions, 2)

	// The replacement is full, not additive.
	balance, err = svc.ReplaceTransactions(ctx, acct.ID, []models.LedgerTransaction{
		{Date: time.Now(), Description: "deposit", Debit: dec("10")},
	})
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("10")))

	stored, err = store.GetAccount(ctx, acct.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Transactions, 1)
}

func TestReplaceTransactionsUnknownAccount(t *testing.T) {
	store := memory.NewLedgerStore()
	svc := NewService(store)

	_, err := svc.ReplaceTransactions(context.Background(), 999, []models.LedgerTransaction{
		{Debit: dec("100")},
	})
	require.ErrorIs(t, err, interfaces.ErrNotFound)

	accounts, err := store.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestUpsertAccountWithTransactionsAndFinancing(t *testing.T) {
	store := memory.NewLedgerStore()
	svc := NewService(store)
	ctx := context.Background()

	acct, err := svc.UpsertAccount(ctx, models.LedgerAccount{
		Slug:        "mortgage",
		Name:        "Building Mortgage",
		AccountType: models.AccountTypeLiability,
		Transactions: []models.LedgerTransaction{
			{Date: time.Now(), Description: "draw", Credit: dec("250000")},
			{Date: time.Now(), Description: "payment", Debit: dec("5000")},
		},
		Financing: &models.FinancingTerms{
			Principal:    dec("250000"),
			InterestRate: dec("6.5"),
			TermYears:    30,
			Breakdown: []models.BreakdownEntry{
				{Label: "down payment", Amount: dec("50000")},
				{Label: "loan", Amount: dec("200000")},
			},
		},
	})
	require.NoError(t, err)
	assert.True(t, acct.CurrentBalance.Equal(dec("245000")), "got %s", acct.CurrentBalance)
	require.NotNil(t, acct.Financing)
	assert.Equal(t, 30, acct.Financing.TermYears)
	assert.Len(t, acct.Financing.Breakdown, 2)

	// Upserting again by slug updates metadata without dropping state.
	again, err := svc.UpsertAccount(ctx, models.LedgerAccount{
		Slug:        "mortgage",
		Name:        "Building Mortgage (refi)",
		AccountType: models.AccountTypeLiability,
	})
	require.NoError(t, err)
	assert.Equal(t, acct.ID, again.ID)
	assert.Equal(t, "Building Mortgage (refi)", again.Name)
	assert.True(t, again.CurrentBalance.Equal(dec("245000")))
	require.NotNil(t, again.Financing)
}

func TestUpsertAccountTypeChangeRecomputesBalance(t *testing.T) {
	store := memory.NewLedgerStore()
	svc := NewService(store)
	ctx := context.Background()

	acct, err := svc.UpsertAccount(ctx, models.LedgerAccount{
		Slug:        "loan",
		Name:        "Member Loan",
		AccountType: models.AccountTypeAsset,
		Transactions: []models.LedgerTransaction{
			{Date: time.Now(), Description: "advance", Debit: dec("100")},
		},
	})
	require.NoError(t, err)
	assert.True(t, acct.CurrentBalance.Equal(dec("100")))

	// Flipping the type without resending transactions must re-fold the
	// stored set under the new sign convention.
	again, err := svc.UpsertAccount(ctx, models.LedgerAccount{
		Slug:        "loan",
		Name:        "Member Loan",
		AccountType: models.AccountTypeLiability,
	})
	require.NoError(t, err)
	assert.True(t, again.CurrentBalance.Equal(dec("-100")), "got %s", again.CurrentBalance)
	assert.Len(t, again.Transactions, 1)
}

func TestUpsertAccountDefaultsToAsset(t *testing.T) {
	store := memory.NewLedgerStore()
	svc := NewService(store)

	acct, err := svc.UpsertAccount(context.Background(), models.LedgerAccount{Slug: "petty-cash", Name: "Petty Cash"})
	require.NoError(t, err)
	assert.Equal(t, models.AccountTypeAsset, acct.AccountType)
}

func TestSaveRentMonthRecomputesTotal(t *testing.T) {
	store := memory.NewLedgerStore()
	svc := NewService(store)
	ctx := context.Background()

	monthStart := time.Date(2025, time.July, 2, 0, 0, 0, 0, time.UTC)
	r500 := dec("500")
	r750 := dec("750")

	month, err := svc.SaveRentMonth(ctx, monthStart, []models.RentRecord{
		{TenantBaseID: 1, MonthlyRent: &r500, AmountDue: dec("500"), AmountReceived: dec("500")},
		{TenantBaseID: 2, MonthlyRent: nil},
		{TenantBaseID: 3, MonthlyRent: &r750, AmountDue: dec("750")},
	})
	require.NoError(t, err)
	require.NotNil(t, month.Total)
	assert.True(t, month.Total.Equal(dec("1250")), "got %s", month.Total)
	assert.Len(t, month.Records, 3)

	// Saving again replaces the records and the total.
	month, err = svc.SaveRentMonth(ctx, monthStart, []models.RentRecord{
		{TenantBaseID: 1, MonthlyRent: &r500},
	})
	require.NoError(t, err)
	assert.True(t, month.Total.Equal(dec("500")))
	assert.Len(t, month.Records, 1)
}

func ptr(s string) *string { return &s }
