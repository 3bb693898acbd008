package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"teller-proxy/internal/interfaces"
	"teller-proxy/internal/models"

	"github.com/shopspring/decimal"
)

// LedgerStore is an in-memory implementation of interfaces.LedgerStore.
type LedgerStore struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]*models.LedgerAccount
	tenants  []models.RentTenant
	months   map[time.Time]*models.RentMonth
}

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		accounts: make(map[int64]*models.LedgerAccount),
		months:   make(map[time.Time]*models.RentMonth),
	}
}

func (m *LedgerStore) ListAccounts(ctx context.Context) ([]models.LedgerAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]models.LedgerAccount, 0, len(m.accounts))
	for _, a := range m.accounts {
		result = append(result, copyAccount(a))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *LedgerStore) GetAccount(ctx context.Context, id int64) (*models.LedgerAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	c := copyAccount(a)
	return &c, nil
}

func (m *LedgerStore) GetAccountBySlug(ctx context.Context, slug string) (*models.LedgerAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.accounts {
		if a.Slug == slug {
			c := copyAccount(a)
			return &c, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (m *LedgerStore) SaveAccount(ctx context.Context, acct *models.LedgerAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.accounts {
		if a.Slug == acct.Slug {
			a.Name = acct.Name
			a.Subtitle = acct.Subtitle
			a.AccountType = acct.AccountType
			a.UpdatedAt = time.Now()
			acct.ID = a.ID
			return nil
		}
	}

	m.nextID++
	stored := copyAccount(acct)
	stored.ID = m.nextID
	stored.CreatedAt = time.Now()
	stored.Transactions = nil
	stored.Financing = nil
	m.accounts[stored.ID] = &stored
	acct.ID = stored.ID
	return nil
}

func (m *LedgerStore) ReplaceTransactions(ctx context.Context, accountID int64, txns []models.LedgerTransaction, balance decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[accountID]
	if !ok {
		return interfaces.ErrNotFound
	}

	replaced := make([]models.LedgerTransaction, len(txns))
	for i, t := range txns {
		m.nextID++
		t.ID = m.nextID
		t.AccountID = accountID
		replaced[i] = t
	}
	a.Transactions = replaced
	a.CurrentBalance = balance
	a.UpdatedAt = time.Now()
	return nil
}

func (m *LedgerStore) GetTransactions(ctx context.Context, accountID int64) ([]models.LedgerTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[accountID]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	result := make([]models.LedgerTransaction, len(a.Transactions))
	copy(result, a.Transactions)
	return result, nil
}

func (m *LedgerStore) UpsertFinancing(ctx context.Context, accountID int64, terms models.FinancingTerms) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[accountID]
	if !ok {
		return interfaces.ErrNotFound
	}

	if a.Financing == nil {
		m.nextID++
		terms.ID = m.nextID
	} else {
		terms.ID = a.Financing.ID
		if terms.Breakdown == nil {
			terms.Breakdown = a.Financing.Breakdown
		}
		if terms.MemberLoans == nil {
			terms.MemberLoans = a.Financing.MemberLoans
		}
	}
	terms.AccountID = accountID
	a.Financing = &terms
	return nil
}

func (m *LedgerStore) ListTenants(ctx context.Context) ([]models.RentTenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]models.RentTenant, len(m.tenants))
	copy(result, m.tenants)
	return result, nil
}

// AddTenant seeds a tenant row. Test helper.
func (m *LedgerStore) AddTenant(t models.RentTenant) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	t.ID = m.nextID
	m.tenants = append(m.tenants, t)
}

func (m *LedgerStore) GetRentMonth(ctx context.Context, monthStart time.Time) (*models.RentMonth, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	month, ok := m.months[monthStart]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	c := copyRentMonth(month)
	return &c, nil
}

func (m *LedgerStore) SaveRentMonth(ctx context.Context, month models.RentMonth) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.months[month.MonthStart]
	if !ok {
		m.nextID++
		stored = &models.RentMonth{ID: m.nextID, MonthStart: month.MonthStart}
		m.months[month.MonthStart] = stored
	}

	records := make([]models.RentRecord, len(month.Records))
	for i, r := range month.Records {
		m.nextID++
		r.ID = m.nextID
		r.RentMonthID = stored.ID
		records[i] = r
	}
	stored.Records = records
	stored.Total = month.Total
	return nil
}

func copyAccount(a *models.LedgerAccount) models.LedgerAccount {
	c := *a
	c.Transactions = make([]models.LedgerTransaction, len(a.Transactions))
	copy(c.Transactions, a.Transactions)
	if a.Financing != nil {
		f := *a.Financing
		c.Financing = &f
	}
	return c
}

func copyRentMonth(month *models.RentMonth) models.RentMonth {
	c := *month
	c.Records = make([]models.RentRecord, len(month.Records))
	copy(c.Records, month.Records)
	return c
}

var _ interfaces.LedgerStore = (*LedgerStore)(nil)
