package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultTransactionLimit = 100

// handleCachedTransactions serves the N most recent cached transactions in
// their original upstream payload shape, newest first.
func (s *Server) handleCachedTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultTransactionLimit
	}

	txns, err := s.cache.RecentTransactions(r.Context(), accountID, limit)
	if err != nil {
		s.logger.Error("error retrieving cached transactions",
			zap.String("account_id", accountID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve cached transactions.")
		return
	}

	payloads := make([]json.RawMessage, 0, len(txns))
	for _, t := range txns {
		payloads = append(payloads, t.Raw)
	}
	writeJSON(w, http.StatusOK, payloads)
}

// handleCachedBalances serves the latest cached balance snapshot, or an
// empty object when none is stored.
func (s *Server) handleCachedBalances(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	latest, err := s.cache.LatestBalance(r.Context(), accountID)
	if err != nil {
		s.logger.Error("error retrieving cached balances",
			zap.String("account_id", accountID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve cached balances.")
		return
	}

	if latest == nil {
		writeJSON(w, http.StatusOK, map[string]string{})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"available": latest.Available.String(),
		"ledger":    latest.Ledger.String(),
	})
}
