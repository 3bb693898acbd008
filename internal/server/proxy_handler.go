package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"teller-proxy/internal/auth"
	"teller-proxy/internal/models"
	"teller-proxy/internal/models/events"
	"teller-proxy/internal/teller"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// userClient binds the Teller client to the caller's extracted credential.
func (s *Server) userClient(r *http.Request) *teller.Client {
	token := auth.ExtractToken(r.Header.Get("Authorization"))
	return s.client.ForUser(token)
}

// proxy relays one upstream call verbatim.
func (s *Server) proxy(w http.ResponseWriter, r *http.Request, fn func(c *teller.Client) (*teller.Response, error)) {
	resp, err := fn(s.userClient(r))
	if err != nil {
		s.logger.Error("upstream request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Upstream request failed.")
		return
	}
	relay(w, resp.StatusCode, resp.Body)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	s.proxy(w, r, func(c *teller.Client) (*teller.Response, error) {
		return c.ListAccounts(r.Context())
	})
}

func (s *Server) handleAccountDetails(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	s.proxy(w, r, func(c *teller.Client) (*teller.Response, error) {
		return c.GetAccountDetails(r.Context(), accountID)
	})
}

// handleAccountBalances fetches live balances and writes them through to
// the cache before replying. A cache-write failure turns into a 500 even
// though the upstream fetch succeeded; this is a known design tension,
// kept from the original behavior.
func (s *Server) handleAccountBalances(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	client := s.userClient(r)

	resp, err := client.GetAccountBalances(r.Context(), accountID)
	if err != nil {
		s.logger.Error("upstream balance fetch failed", zap.String("account_id", accountID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Upstream request failed.")
		return
	}

	if resp.StatusCode == http.StatusOK {
		if err := s.storeBalanceSnapshot(r.Context(), client, accountID, resp.Body); err != nil {
			s.logger.Error("error storing balance snapshot",
				zap.String("account_id", accountID),
				zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to store balance snapshot in database.")
			return
		}
		s.publish(events.KindBalanceSnapshot, accountID)
	}

	relay(w, resp.StatusCode, resp.Body)
}

func (s *Server) handleAccountTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	client := s.userClient(r)

	// A malformed count falls back to no limit.
	count, err := strconv.Atoi(r.URL.Query().Get("count"))
	if err != nil {
		count = 0
	}

	resp, err := client.ListAccountTransactions(r.Context(), accountID, count)
	if err != nil {
		s.logger.Error("upstream transaction fetch failed", zap.String("account_id", accountID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Upstream request failed.")
		return
	}

	if resp.StatusCode == http.StatusOK {
		if err := s.storeTransactions(r.Context(), client, accountID, resp.Body); err != nil {
			s.logger.Error("error storing transactions",
				zap.String("account_id", accountID),
				zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to store transactions in database.")
			return
		}
		s.publish(events.KindTransactionsCached, accountID)
	}

	relay(w, resp.StatusCode, resp.Body)
}

func (s *Server) handleListPayees(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	scheme := chi.URLParam(r, "scheme")
	s.proxy(w, r, func(c *teller.Client) (*teller.Response, error) {
		return c.ListAccountPayees(r.Context(), accountID, scheme)
	})
}

func (s *Server) handleCreatePayee(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	scheme := chi.URLParam(r, "scheme")
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body.")
		return
	}
	s.proxy(w, r, func(c *teller.Client) (*teller.Response, error) {
		return c.CreateAccountPayee(r.Context(), accountID, scheme, body)
	})
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	scheme := chi.URLParam(r, "scheme")
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body.")
		return
	}
	s.proxy(w, r, func(c *teller.Client) (*teller.Response, error) {
		return c.CreateAccountPayment(r.Context(), accountID, scheme, body)
	})
}

// tellerAccount is the subset of the upstream account payload the cache
// keeps in columns.
type tellerAccount struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Institution struct {
		ID string `json:"id"`
	} `json:"institution"`
	Type     string `json:"type"`
	Subtype  string `json:"subtype"`
	LastFour string `json:"last_four"`
}

// storeBalanceSnapshot upserts the account row and appends a snapshot.
// When the account fetch itself comes back non-200 nothing is written,
// matching the original behavior.
func (s *Server) storeBalanceSnapshot(ctx context.Context, client *teller.Client, accountID string, balanceBody []byte) error {
	acctResp, err := client.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if acctResp.StatusCode != http.StatusOK {
		return nil
	}

	if err := s.upsertAccountRow(ctx, acctResp.Body); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(balanceBody, &fields); err != nil {
		return err
	}

	return s.cache.AddBalanceSnapshot(ctx, models.BalanceSnapshot{
		AccountID: accountID,
		Available: decimalField(fields, "available"),
		Ledger:    decimalField(fields, "ledger"),
		AsOf:      time.Now(),
		Raw:       balanceBody,
	})
}

func (s *Server) storeTransactions(ctx context.Context, client *teller.Client, accountID string, txnsBody []byte) error {
	acctResp, err := client.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if acctResp.StatusCode != http.StatusOK {
		return nil
	}

	if err := s.upsertAccountRow(ctx, acctResp.Body); err != nil {
		return err
	}

	var rawTxns []json.RawMessage
	if err := json.Unmarshal(txnsBody, &rawTxns); err != nil {
		return err
	}

	txns := make([]models.Transaction, 0, len(rawTxns))
	for _, raw := range rawTxns {
		var t struct {
			ID          string          `json:"id"`
			Date        string          `json:"date"`
			Description string          `json:"description"`
			Amount      json.RawMessage `json:"amount"`
		}
		if err := json.Unmarshal(raw, &t); err != nil {
			return err
		}

		date, err := time.Parse("2006-01-02", t.Date)
		if err != nil {
			return err
		}

		txns = append(txns, models.Transaction{
			ID:          t.ID,
			AccountID:   accountID,
			Date:        date,
			Description: t.Description,
			Amount:      decimalField(map[string]json.RawMessage{"amount": t.Amount}, "amount"),
			Raw:         raw,
		})
	}

	return s.cache.UpsertTransactions(ctx, accountID, txns)
}

func (s *Server) upsertAccountRow(ctx context.Context, acctBody []byte) error {
	var acct tellerAccount
	if err := json.Unmarshal(acctBody, &acct); err != nil {
		return err
	}

	return s.cache.UpsertAccount(ctx, models.Account{
		ID:            acct.ID,
		Name:          acct.Name,
		InstitutionID: acct.Institution.ID,
		Type:          acct.Type,
		Subtype:       acct.Subtype,
		LastFour:      acct.LastFour,
	})
}

// decimalField reads a monetary field that Teller may send as a JSON
// number or string. Missing or unparsable values map to zero in the
// column; the raw payload column keeps the exact upstream value.
func decimalField(fields map[string]json.RawMessage, key string) decimal.Decimal {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return decimal.Zero
	}

	var str string
	if json.Unmarshal(raw, &str) == nil {
		if d, err := decimal.NewFromString(str); err == nil {
			return d
		}
		return decimal.Zero
	}

	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return decimal.NewFromFloat(f)
	}
	return decimal.Zero
}
