package events

import "time"

// MutationOccurred is emitted after a successful cache write or ledger
// mutation. Consumers treat it as a change notification, not a payload.
type MutationOccurred struct {
	EventID    string    `json:"event_id"`
	Kind       string    `json:"kind"`
	AccountRef string    `json:"account_ref"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Mutation kinds.
const (
	KindBalanceSnapshot    = "balance_snapshot"
	KindTransactionsCached = "transactions_cached"
	KindLedgerAccountSaved = "ledger_account_saved"
	KindLedgerTxnsReplaced = "ledger_transactions_replaced"
	KindRentMonthSaved     = "rent_month_saved"
)
