package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"teller-proxy/internal/interfaces"
	"teller-proxy/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// LedgerStore is the Postgres implementation of interfaces.LedgerStore.
// Every mutating method runs in a single transaction.
type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

func (s *LedgerStore) ListAccounts(ctx context.Context) ([]models.LedgerAccount, error) {
	const query = `SELECT account_id, slug, name, COALESCE(subtitle, ''), account_type, current_balance, created_at, COALESCE(updated_at, created_at)
	FROM llc_accounts
	ORDER BY account_id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.LedgerAccount
	for rows.Next() {
		var a models.LedgerAccount
		if err := rows.Scan(&a.ID, &a.Slug, &a.Name, &a.Subtitle, &a.AccountType, &a.CurrentBalance, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range accounts {
		if err := s.loadOwned(ctx, &accounts[i]); err != nil {
			return nil, err
		}
	}
	return accounts, nil
}

func (s *LedgerStore) GetAccount(ctx context.Context, id int64) (*models.LedgerAccount, error) {
	const query = `SELECT account_id, slug, name, COALESCE(subtitle, ''), account_type, current_balance, created_at, COALESCE(updated_at, created_at)
	FROM llc_accounts
	WHERE account_id = $1`

	return s.getAccount(ctx, query, id)
}

func (s *LedgerStore) GetAccountBySlug(ctx context.Context, slug string) (*models.LedgerAccount, error) {
	const query = `SELECT account_id, slug, name, COALESCE(subtitle, ''), account_type, current_balance, created_at, COALESCE(updated_at, created_at)
	FROM llc_accounts
	WHERE slug = $1`

	return s.getAccount(ctx, query, slug)
}

func (s *LedgerStore) getAccount(ctx context.Context, query string, arg any) (*models.LedgerAccount, error) {
	var a models.LedgerAccount
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.Slug, &a.Name, &a.Subtitle, &a.AccountType, &a.CurrentBalance, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadOwned(ctx, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *LedgerStore) loadOwned(ctx context.Context, a *models.LedgerAccount) error {
	txns, err := s.GetTransactions(ctx, a.ID)
	if err != nil {
		return err
	}
	a.Transactions = txns

	terms, err := s.getFinancing(ctx, a.ID)
	if err != nil {
		return err
	}
	a.Financing = terms
	return nil
}

func (s *LedgerStore) SaveAccount(ctx context.Context, acct *models.LedgerAccount) error {
	const query = `INSERT INTO llc_accounts (slug, name, subtitle, account_type)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (slug) DO UPDATE SET
		name = EXCLUDED.name,
		subtitle = EXCLUDED.subtitle,
		account_type = EXCLUDED.account_type,
		updated_at = now()
	RETURNING account_id`

	return s.db.QueryRowContext(ctx, query,
		acct.Slug, acct.Name, acct.Subtitle, acct.AccountType).Scan(&acct.ID)
}

func (s *LedgerStore) ReplaceTransactions(ctx context.Context, accountID int64, txns []models.LedgerTransaction, balance decimal.Decimal) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	var exists int
	err = dbTx.QueryRowContext(ctx, `SELECT 1 FROM llc_accounts WHERE account_id = $1`, accountID).Scan(&exists)
	if err == sql.ErrNoRows {
		err = interfaces.ErrNotFound
		return err
	}
	if err != nil {
		return err
	}

	_, err = dbTx.ExecContext(ctx, `DELETE FROM llc_account_transactions WHERE account_id = $1`, accountID)
	if err != nil {
		return err
	}

	const insert = `INSERT INTO llc_account_transactions (account_id, txn_date, description, debit, credit)
	VALUES ($1, $2, $3, $4, $5)`
	for _, t := range txns {
		_, err = dbTx.ExecContext(ctx, insert, accountID, t.Date, t.Description, t.Debit, t.Credit)
		if err != nil {
			return err
		}
	}

	_, err = dbTx.ExecContext(ctx,
		`UPDATE llc_accounts SET current_balance = $1, updated_at = now() WHERE account_id = $2`,
		balance, accountID)
	if err != nil {
		return err
	}

	return dbTx.Commit()
}

func (s *LedgerStore) GetTransactions(ctx context.Context, accountID int64) ([]models.LedgerTransaction, error) {
	const query = `SELECT transaction_id, account_id, txn_date, description, debit, credit
	FROM llc_account_transactions
	WHERE account_id = $1
	ORDER BY transaction_id`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []models.LedgerTransaction
	for rows.Next() {
		var t models.LedgerTransaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Date, &t.Description, &t.Debit, &t.Credit); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func (s *LedgerStore) UpsertFinancing(ctx context.Context, accountID int64, terms models.FinancingTerms) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	const upsert = `INSERT INTO llc_financing_terms (account_id, principal, interest_rate, term_years)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (account_id) DO UPDATE SET
		principal = EXCLUDED.principal,
		interest_rate = EXCLUDED.interest_rate,
		term_years = EXCLUDED.term_years
	RETURNING financing_id`

	var financingID int64
	err = dbTx.QueryRowContext(ctx, upsert,
		accountID, terms.Principal, terms.InterestRate, terms.TermYears).Scan(&financingID)
	if err != nil {
		if isForeignKeyViolation(err) {
			err = interfaces.ErrNotFound
		}
		return err
	}

	if terms.Breakdown != nil {
		_, err = dbTx.ExecContext(ctx, `DELETE FROM llc_financing_breakdown WHERE financing_id = $1`, financingID)
		if err != nil {
			return err
		}
		for _, b := range terms.Breakdown {
			_, err = dbTx.ExecContext(ctx,
				`INSERT INTO llc_financing_breakdown (financing_id, label, amount) VALUES ($1, $2, $3)`,
				financingID, b.Label, b.Amount)
			if err != nil {
				return err
			}
		}
	}

	if terms.MemberLoans != nil {
		_, err = dbTx.ExecContext(ctx, `DELETE FROM llc_member_loans WHERE financing_id = $1`, financingID)
		if err != nil {
			return err
		}
		for _, loan := range terms.MemberLoans {
			var memberID int64
			err = dbTx.QueryRowContext(ctx,
				`INSERT INTO llc_members (name) VALUES ($1)
				ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
				RETURNING member_id`,
				loan.MemberName).Scan(&memberID)
			if err != nil {
				return err
			}
			_, err = dbTx.ExecContext(ctx,
				`INSERT INTO llc_member_loans (financing_id, member_id, amount) VALUES ($1, $2, $3)`,
				financingID, memberID, loan.Amount)
			if err != nil {
				return err
			}
		}
	}

	return dbTx.Commit()
}

func (s *LedgerStore) getFinancing(ctx context.Context, accountID int64) (*models.FinancingTerms, error) {
	const query = `SELECT financing_id, account_id, principal, interest_rate, term_years
	FROM llc_financing_terms
	WHERE account_id = $1`

	var terms models.FinancingTerms
	err := s.db.QueryRowContext(ctx, query, accountID).Scan(
		&terms.ID, &terms.AccountID, &terms.Principal, &terms.InterestRate, &terms.TermYears)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT label, amount FROM llc_financing_breakdown WHERE financing_id = $1 ORDER BY financing_breakdown_id`,
		terms.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var b models.BreakdownEntry
		if err := rows.Scan(&b.Label, &b.Amount); err != nil {
			return nil, err
		}
		terms.Breakdown = append(terms.Breakdown, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	loanRows, err := s.db.QueryContext(ctx,
		`SELECT m.name, l.amount
		FROM llc_member_loans l
		JOIN llc_members m ON m.member_id = l.member_id
		WHERE l.financing_id = $1
		ORDER BY l.member_loan_id`,
		terms.ID)
	if err != nil {
		return nil, err
	}
	defer loanRows.Close()
	for loanRows.Next() {
		var loan models.MemberLoan
		if err := loanRows.Scan(&loan.MemberName, &loan.Amount); err != nil {
			return nil, err
		}
		terms.MemberLoans = append(terms.MemberLoans, loan)
	}
	if err := loanRows.Err(); err != nil {
		return nil, err
	}

	return &terms, nil
}

func (s *LedgerStore) ListTenants(ctx context.Context) ([]models.RentTenant, error) {
	const query = `SELECT tenant_id, base_id, floor, renter_name
	FROM llc_rent_tenants
	ORDER BY base_id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []models.RentTenant
	for rows.Next() {
		var t models.RentTenant
		if err := rows.Scan(&t.ID, &t.BaseID, &t.Floor, &t.RenterName); err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (s *LedgerStore) GetRentMonth(ctx context.Context, monthStart time.Time) (*models.RentMonth, error) {
	const query = `SELECT m.rent_month_id, m.month_start, t.total_monthly_rent
	FROM llc_rent_months m
	LEFT JOIN llc_rent_totals t ON t.rent_month_id = m.rent_month_id
	WHERE m.month_start = $1`

	var month models.RentMonth
	var total decimal.NullDecimal
	err := s.db.QueryRowContext(ctx, query, monthStart).Scan(&month.ID, &month.MonthStart, &total)
	if err == sql.ErrNoRows {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if total.Valid {
		month.Total = &total.Decimal
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT r.rent_record_id, r.rent_month_id, t.base_id, r.monthly_rent, r.amount_due, r.amount_received
		FROM llc_rent_records r
		JOIN llc_rent_tenants t ON t.tenant_id = r.tenant_id
		WHERE r.rent_month_id = $1
		ORDER BY t.base_id`,
		month.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var r models.RentRecord
		var rent decimal.NullDecimal
		if err := rows.Scan(&r.ID, &r.RentMonthID, &r.TenantBaseID, &rent, &r.AmountDue, &r.AmountReceived); err != nil {
			return nil, err
		}
		if rent.Valid {
			r.MonthlyRent = &rent.Decimal
		}
		month.Records = append(month.Records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &month, nil
}

func (s *LedgerStore) SaveRentMonth(ctx context.Context, month models.RentMonth) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	var monthID int64
	err = dbTx.QueryRowContext(ctx,
		`INSERT INTO llc_rent_months (month_start) VALUES ($1)
		ON CONFLICT (month_start) DO UPDATE SET month_start = EXCLUDED.month_start
		RETURNING rent_month_id`,
		month.MonthStart).Scan(&monthID)
	if err != nil {
		return err
	}

	_, err = dbTx.ExecContext(ctx, `DELETE FROM llc_rent_records WHERE rent_month_id = $1`, monthID)
	if err != nil {
		return err
	}

	for _, r := range month.Records {
		// Tenants are created on first reference by base id.
		var tenantID int64
		err = dbTx.QueryRowContext(ctx,
			`INSERT INTO llc_rent_tenants (base_id, floor, renter_name) VALUES ($1, '', '')
			ON CONFLICT (base_id) DO UPDATE SET base_id = EXCLUDED.base_id
			RETURNING tenant_id`,
			r.TenantBaseID).Scan(&tenantID)
		if err != nil {
			return err
		}

		rent := decimal.NullDecimal{}
		if r.MonthlyRent != nil {
			rent = decimal.NullDecimal{Decimal: *r.MonthlyRent, Valid: true}
		}
		_, err = dbTx.ExecContext(ctx,
			`INSERT INTO llc_rent_records (rent_month_id, tenant_id, monthly_rent, amount_due, amount_received)
			VALUES ($1, $2, $3, $4, $5)`,
			monthID, tenantID, rent, r.AmountDue, r.AmountReceived)
		if err != nil {
			return err
		}
	}

	if month.Total != nil {
		_, err = dbTx.ExecContext(ctx,
			`INSERT INTO llc_rent_totals (rent_month_id, total_monthly_rent) VALUES ($1, $2)
			ON CONFLICT (rent_month_id) DO UPDATE SET total_monthly_rent = EXCLUDED.total_monthly_rent`,
			monthID, *month.Total)
		if err != nil {
			return err
		}
	}

	return dbTx.Commit()
}

func isForeignKeyViolation(err error) bool {
	// lib/pq reports FK violations with SQLSTATE 23503.
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return false
}

var _ interfaces.LedgerStore = (*LedgerStore)(nil)
