// Package server exposes the HTTP surface: the Teller proxy with its
// write-through cache, the cache-only read endpoints and the LLC ledger.
package server

import (
	"net/http"
	"time"

	"teller-proxy/internal/interfaces"
	"teller-proxy/internal/ledger"
	"teller-proxy/internal/models/events"
	"teller-proxy/internal/teller"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Server holds the wired dependencies for all handlers. The publisher is
// optional; a nil publisher disables mutation events.
type Server struct {
	logger    *zap.Logger
	client    *teller.Client
	cache     interfaces.CacheStore
	ledger    *ledger.Service
	publisher interfaces.EventPublisher
}

func New(logger *zap.Logger, client *teller.Client, cache interfaces.CacheStore, ledgerSvc *ledger.Service, publisher interfaces.EventPublisher) *Server {
	return &Server{
		logger:    logger,
		client:    client,
		cache:     cache,
		ledger:    ledgerSvc,
		publisher: publisher,
	}
}

// Router mounts every route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/accounts", s.handleListAccounts)
		r.Route("/accounts/{accountID}", func(r chi.Router) {
			r.Get("/details", s.handleAccountDetails)
			r.Get("/balances", s.handleAccountBalances)
			r.Get("/transactions", s.handleAccountTransactions)
			r.Route("/payments/{scheme}", func(r chi.Router) {
				r.Post("/", s.handleCreatePayment)
				r.Get("/payees", s.handleListPayees)
				r.Post("/payees", s.handleCreatePayee)
			})
		})

		r.Route("/db/accounts/{accountID}", func(r chi.Router) {
			r.Get("/transactions", s.handleCachedTransactions)
			r.Get("/balances", s.handleCachedBalances)
		})

		r.Route("/llc", func(r chi.Router) {
			r.Get("/accounts", s.handleListLedgerAccounts)
			r.Post("/accounts", s.handleUpsertLedgerAccount)
			r.Get("/accounts/{accountID}/transactions", s.handleLedgerTransactions)
			r.Put("/accounts/{accountID}/transactions/bulk", s.handleBulkReplaceTransactions)

			r.Get("/rent/tenants", s.handleListTenants)
			r.Get("/rent/{month}", s.handleGetRentMonth)
			r.Put("/rent/{month}", s.handleSaveRentMonth)
			// The legacy frontend saves with POST.
			r.Post("/rent/{month}", s.handleSaveRentMonth)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// publish emits a mutation event when a publisher is configured. Failures
// are logged and never surface to the caller.
func (s *Server) publish(kind, accountRef string) {
	if s.publisher == nil {
		return
	}

	ev := events.MutationOccurred{
		EventID:    uuid.NewString(),
		Kind:       kind,
		AccountRef: accountRef,
		OccurredAt: time.Now(),
	}
	if err := s.publisher.Publish(accountRef, ev); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("kind", kind),
			zap.String("account_ref", accountRef),
			zap.Error(err))
	}
}
