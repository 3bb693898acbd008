package postgres

import (
	"context"
	"database/sql"
	"time"

	"teller-proxy/internal/interfaces"
	"teller-proxy/internal/models"
)

// CacheStore is the Postgres implementation of interfaces.CacheStore.
type CacheStore struct {
	db *sql.DB
}

func NewCacheStore(db *sql.DB) *CacheStore {
	return &CacheStore{db: db}
}

func (s *CacheStore) UpsertAccount(ctx context.Context, acct models.Account) error {
	const query = `INSERT INTO accounts (id, name, institution_id, type, subtype, last_four)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		institution_id = EXCLUDED.institution_id,
		type = EXCLUDED.type,
		subtype = EXCLUDED.subtype,
		last_four = EXCLUDED.last_four,
		updated_at = now()`

	_, err := s.db.ExecContext(ctx, query,
		acct.ID, acct.Name, acct.InstitutionID, acct.Type, acct.Subtype, acct.LastFour)
	return err
}

func (s *CacheStore) AddBalanceSnapshot(ctx context.Context, snap models.BalanceSnapshot) error {
	const query = `INSERT INTO balance_snapshots (account_id, available, ledger, as_of, raw)
	VALUES ($1, $2, $3, $4, $5)`

	asOf := snap.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	_, err := s.db.ExecContext(ctx, query,
		snap.AccountID, snap.Available, snap.Ledger, asOf, []byte(snap.Raw))
	return err
}

func (s *CacheStore) UpsertTransactions(ctx context.Context, accountID string, txns []models.Transaction) error {
	// Known ids are skipped, never overwritten.
	const query = `INSERT INTO transactions (id, account_id, date, description, amount, raw)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO NOTHING`

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	for _, t := range txns {
		_, err = dbTx.ExecContext(ctx, query,
			t.ID, accountID, t.Date, t.Description, t.Amount, []byte(t.Raw))
		if err != nil {
			return err
		}
	}

	return dbTx.Commit()
}

func (s *CacheStore) LatestBalance(ctx context.Context, accountID string) (*models.BalanceSnapshot, error) {
	const query = `SELECT id, account_id, available, ledger, as_of, raw
	FROM balance_snapshots
	WHERE account_id = $1
	ORDER BY as_of DESC
	LIMIT 1`

	var snap models.BalanceSnapshot
	var raw []byte
	err := s.db.QueryRowContext(ctx, query, accountID).Scan(
		&snap.ID,
		&snap.AccountID,
		&snap.Available,
		&snap.Ledger,
		&snap.AsOf,
		&raw,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	snap.Raw = raw
	return &snap, nil
}

func (s *CacheStore) RecentTransactions(ctx context.Context, accountID string, limit int) ([]models.Transaction, error) {
	const query = `SELECT id, account_id, date, description, amount, raw
	FROM transactions
	WHERE account_id = $1
	ORDER BY date DESC
	LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var raw []byte
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Date, &t.Description, &t.Amount, &raw); err != nil {
			return nil, err
		}
		t.Raw = raw
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return txns, nil
}

var _ interfaces.CacheStore = (*CacheStore)(nil)
