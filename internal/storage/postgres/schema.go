package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is the bootstrap DDL, run at startup. Statements are idempotent;
// real migrations are out of scope.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		name TEXT,
		institution_id TEXT,
		type TEXT,
		subtype TEXT,
		last_four TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS balance_snapshots (
		id BIGSERIAL PRIMARY KEY,
		account_id TEXT REFERENCES accounts(id),
		available NUMERIC(14,2),
		ledger NUMERIC(14,2),
		as_of TIMESTAMPTZ NOT NULL DEFAULT now(),
		raw JSONB,
		CONSTRAINT uq_bal_asof UNIQUE (account_id, as_of)
	)`,
	`CREATE INDEX IF NOT EXISTS ix_bal_account ON balance_snapshots (account_id)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		account_id TEXT REFERENCES accounts(id),
		date DATE,
		description TEXT,
		amount NUMERIC(14,2),
		raw JSONB
	)`,
	`CREATE INDEX IF NOT EXISTS ix_txn_acct_date ON transactions (account_id, date)`,
	`CREATE TABLE IF NOT EXISTS llc_members (
		member_id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS llc_accounts (
		account_id SERIAL PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		subtitle TEXT,
		account_type TEXT NOT NULL,
		current_balance NUMERIC(14,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS llc_account_transactions (
		transaction_id SERIAL PRIMARY KEY,
		account_id INTEGER NOT NULL REFERENCES llc_accounts(account_id) ON DELETE CASCADE,
		txn_date TIMESTAMPTZ NOT NULL,
		description TEXT NOT NULL,
		debit NUMERIC(14,2) NOT NULL DEFAULT 0,
		credit NUMERIC(14,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS llc_financing_terms (
		financing_id SERIAL PRIMARY KEY,
		account_id INTEGER NOT NULL UNIQUE REFERENCES llc_accounts(account_id) ON DELETE CASCADE,
		principal NUMERIC(14,2) NOT NULL,
		interest_rate NUMERIC(5,2) NOT NULL,
		term_years INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS llc_financing_breakdown (
		financing_breakdown_id SERIAL PRIMARY KEY,
		financing_id INTEGER NOT NULL REFERENCES llc_financing_terms(financing_id) ON DELETE CASCADE,
		label TEXT NOT NULL,
		amount NUMERIC(14,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS llc_member_loans (
		member_loan_id SERIAL PRIMARY KEY,
		financing_id INTEGER NOT NULL REFERENCES llc_financing_terms(financing_id) ON DELETE CASCADE,
		member_id INTEGER NOT NULL REFERENCES llc_members(member_id) ON DELETE CASCADE,
		amount NUMERIC(14,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS llc_rent_tenants (
		tenant_id SERIAL PRIMARY KEY,
		base_id INTEGER NOT NULL UNIQUE,
		floor TEXT NOT NULL,
		renter_name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS llc_rent_months (
		rent_month_id SERIAL PRIMARY KEY,
		month_start TIMESTAMPTZ NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS llc_rent_records (
		rent_record_id SERIAL PRIMARY KEY,
		rent_month_id INTEGER NOT NULL REFERENCES llc_rent_months(rent_month_id) ON DELETE CASCADE,
		tenant_id INTEGER NOT NULL REFERENCES llc_rent_tenants(tenant_id) ON DELETE CASCADE,
		monthly_rent NUMERIC(14,2),
		amount_due NUMERIC(14,2) NOT NULL DEFAULT 0,
		amount_received NUMERIC(14,2) NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS llc_rent_totals (
		rent_month_id INTEGER PRIMARY KEY REFERENCES llc_rent_months(rent_month_id) ON DELETE CASCADE,
		total_monthly_rent NUMERIC(14,2) NOT NULL
	)`,
}

// InitSchema creates every table the stores rely on.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
