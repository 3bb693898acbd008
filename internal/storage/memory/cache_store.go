package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"teller-proxy/internal/interfaces"
	"teller-proxy/internal/models"
)

// CacheStore is an in-memory implementation of interfaces.CacheStore.
// It backs the tests; the server runs on the postgres implementation.
type CacheStore struct {
	mu        sync.Mutex
	accounts  map[string]models.Account
	snapshots map[string][]models.BalanceSnapshot
	txns      map[string]models.Transaction
	nextSnap  int64
}

func NewCacheStore() *CacheStore {
	return &CacheStore{
		accounts:  make(map[string]models.Account),
		snapshots: make(map[string][]models.BalanceSnapshot),
		txns:      make(map[string]models.Transaction),
	}
}

func (m *CacheStore) UpsertAccount(ctx context.Context, acct models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.accounts[acct.ID]; ok {
		acct.CreatedAt = existing.CreatedAt
	} else {
		acct.CreatedAt = time.Now()
	}
	acct.UpdatedAt = time.Now()
	m.accounts[acct.ID] = acct
	return nil
}

func (m *CacheStore) AddBalanceSnapshot(ctx context.Context, snap models.BalanceSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextSnap++
	snap.ID = m.nextSnap
	if snap.AsOf.IsZero() {
		snap.AsOf = time.Now()
	}
	m.snapshots[snap.AccountID] = append(m.snapshots[snap.AccountID], snap)
	return nil
}

func (m *CacheStore) UpsertTransactions(ctx context.Context, accountID string, txns []models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range txns {
		if _, exists := m.txns[t.ID]; exists {
			continue
		}
		t.AccountID = accountID
		m.txns[t.ID] = t
	}
	return nil
}

func (m *CacheStore) LatestBalance(ctx context.Context, accountID string) (*models.BalanceSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snaps := m.snapshots[accountID]
	if len(snaps) == 0 {
		return nil, nil
	}

	latest := snaps[0]
	for _, s := range snaps[1:] {
		if s.AsOf.After(latest.AsOf) {
			latest = s
		}
	}
	return &latest, nil
}

func (m *CacheStore) RecentTransactions(ctx context.Context, accountID string, limit int) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []models.Transaction
	for _, t := range m.txns {
		if t.AccountID == accountID {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// TransactionCount reports the number of stored transactions for an
// account. Test helper, not part of the store interface.
func (m *CacheStore) TransactionCount(accountID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.txns {
		if t.AccountID == accountID {
			n++
		}
	}
	return n
}

var _ interfaces.CacheStore = (*CacheStore)(nil)
