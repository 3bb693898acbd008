package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"teller-proxy/internal/interfaces"
	"teller-proxy/internal/models"
	"teller-proxy/internal/models/events"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ledgerTxnRequest struct {
	Date        string          `json:"txn_date"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

type financingRequest struct {
	Principal    decimal.Decimal            `json:"principal"`
	InterestRate decimal.Decimal            `json:"interest_rate"`
	TermYears    int                        `json:"term_years"`
	Breakdown    map[string]decimal.Decimal `json:"breakdown"`
	MemberLoans  map[string]decimal.Decimal `json:"member_loans"`
}

type ledgerAccountRequest struct {
	Slug         string             `json:"slug"`
	Name         string             `json:"name"`
	Subtitle     string             `json:"subtitle"`
	AccountType  string             `json:"account_type"`
	Transactions []ledgerTxnRequest `json:"transactions"`
	Financing    *financingRequest  `json:"financing_terms"`
}

type financingResponse struct {
	Principal    decimal.Decimal            `json:"principal"`
	InterestRate decimal.Decimal            `json:"interest_rate"`
	TermYears    int                        `json:"term_years"`
	Breakdown    map[string]decimal.Decimal `json:"breakdown,omitempty"`
	MemberLoans  map[string]decimal.Decimal `json:"member_loans,omitempty"`
}

type ledgerAccountResponse struct {
	ID             int64                      `json:"account_id"`
	Slug           string                     `json:"slug"`
	Name           string                     `json:"name"`
	Subtitle       string                     `json:"subtitle,omitempty"`
	AccountType    string                     `json:"account_type"`
	CurrentBalance decimal.Decimal            `json:"current_balance"`
	Transactions   []models.LedgerTransaction `json:"transactions"`
	Financing      *financingResponse         `json:"financing_terms,omitempty"`
}

func toAccountResponse(a models.LedgerAccount) ledgerAccountResponse {
	resp := ledgerAccountResponse{
		ID:             a.ID,
		Slug:           a.Slug,
		Name:           a.Name,
		Subtitle:       a.Subtitle,
		AccountType:    a.AccountType,
		CurrentBalance: a.CurrentBalance,
		Transactions:   a.Transactions,
	}
	if resp.Transactions == nil {
		resp.Transactions = []models.LedgerTransaction{}
	}

	if a.Financing != nil {
		f := financingResponse{
			Principal:    a.Financing.Principal,
			InterestRate: a.Financing.InterestRate,
			TermYears:    a.Financing.TermYears,
		}
		if len(a.Financing.Breakdown) > 0 {
			f.Breakdown = make(map[string]decimal.Decimal, len(a.Financing.Breakdown))
			for _, b := range a.Financing.Breakdown {
				f.Breakdown[b.Label] = b.Amount
			}
		}
		if len(a.Financing.MemberLoans) > 0 {
			f.MemberLoans = make(map[string]decimal.Decimal, len(a.Financing.MemberLoans))
			for _, l := range a.Financing.MemberLoans {
				f.MemberLoans[l.MemberName] = l.Amount
			}
		}
		resp.Financing = &f
	}
	return resp
}

func (s *Server) handleListLedgerAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.ledger.ListAccounts(r.Context())
	if err != nil {
		s.logger.Error("error listing ledger accounts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve ledger accounts.")
		return
	}

	resp := make([]ledgerAccountResponse, 0, len(accounts))
	for _, a := range accounts {
		resp = append(resp, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpsertLedgerAccount(w http.ResponseWriter, r *http.Request) {
	var req ledgerAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Slug == "" {
		writeError(w, http.StatusBadRequest, "slug is required")
		return
	}

	acct := models.LedgerAccount{
		Slug:        req.Slug,
		Name:        req.Name,
		Subtitle:    req.Subtitle,
		AccountType: req.AccountType,
	}

	if req.Transactions != nil {
		txns, err := parseLedgerTxns(req.Transactions)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		acct.Transactions = txns
	}

	if req.Financing != nil {
		acct.Financing = &models.FinancingTerms{
			Principal:    req.Financing.Principal,
			InterestRate: req.Financing.InterestRate,
			TermYears:    req.Financing.TermYears,
			Breakdown:    breakdownEntries(req.Financing.Breakdown),
			MemberLoans:  memberLoans(req.Financing.MemberLoans),
		}
	}

	saved, err := s.ledger.UpsertAccount(r.Context(), acct)
	if err != nil {
		s.logger.Error("error saving ledger account", zap.String("slug", req.Slug), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save ledger account.")
		return
	}
	s.publish(events.KindLedgerAccountSaved, saved.Slug)

	writeJSON(w, http.StatusOK, toAccountResponse(*saved))
}

func (s *Server) handleLedgerTransactions(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}

	txns, err := s.ledger.Transactions(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		s.logger.Error("error listing ledger transactions", zap.Int64("account_id", accountID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve ledger transactions.")
		return
	}

	if txns == nil {
		txns = []models.LedgerTransaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

// handleBulkReplaceTransactions swaps an account's full transaction set.
// The body is a JSON array of transactions.
func (s *Server) handleBulkReplaceTransactions(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}

	var reqs []ledgerTxnRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	txns, err := parseLedgerTxns(reqs)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	balance, err := s.ledger.ReplaceTransactions(r.Context(), accountID, txns)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		s.logger.Error("error replacing ledger transactions", zap.Int64("account_id", accountID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to update ledger transactions.")
		return
	}
	s.publish(events.KindLedgerTxnsReplaced, strconv.FormatInt(accountID, 10))

	writeJSON(w, http.StatusOK, map[string]any{
		"account_id":      accountID,
		"current_balance": balance,
	})
}

func parseLedgerTxns(reqs []ledgerTxnRequest) ([]models.LedgerTransaction, error) {
	txns := make([]models.LedgerTransaction, 0, len(reqs))
	for _, req := range reqs {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, errors.New("invalid txn_date, expected YYYY-MM-DD")
		}
		txns = append(txns, models.LedgerTransaction{
			Date:        date,
			Description: req.Description,
			Debit:       req.Debit,
			Credit:      req.Credit,
		})
	}
	return txns, nil
}

// breakdownEntries flattens the label→amount mapping in stable label order.
func breakdownEntries(m map[string]decimal.Decimal) []models.BreakdownEntry {
	if m == nil {
		return nil
	}
	labels := make([]string, 0, len(m))
	for label := range m {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	entries := make([]models.BreakdownEntry, 0, len(labels))
	for _, label := range labels {
		entries = append(entries, models.BreakdownEntry{Label: label, Amount: m[label]})
	}
	return entries
}

func memberLoans(m map[string]decimal.Decimal) []models.MemberLoan {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	loans := make([]models.MemberLoan, 0, len(names))
	for _, name := range names {
		loans = append(loans, models.MemberLoan{MemberName: name, Amount: m[name]})
	}
	return loans
}
