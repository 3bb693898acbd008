package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"teller-proxy/internal/interfaces"
	"teller-proxy/internal/ledger"
	"teller-proxy/internal/models"
	"teller-proxy/internal/models/events"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type rentRecordRequest struct {
	TenantBaseID   int             `json:"id"`
	MonthlyRent    json.RawMessage `json:"monthly_rent"`
	AmountDue      decimal.Decimal `json:"amount_due"`
	AmountReceived decimal.Decimal `json:"amount_received"`
}

type rentMonthResponse struct {
	Month   string              `json:"month"`
	Records []models.RentRecord `json:"records"`
	Total   *decimal.Decimal    `json:"total_monthly_rent,omitempty"`
}

func toRentMonthResponse(m *models.RentMonth) rentMonthResponse {
	resp := rentMonthResponse{
		Month:   m.MonthStart.Format("2006-01"),
		Records: m.Records,
		Total:   m.Total,
	}
	if resp.Records == nil {
		resp.Records = []models.RentRecord{}
	}
	return resp
}

func (s *Server) handleListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := s.ledger.Tenants(r.Context())
	if err != nil {
		s.logger.Error("error listing rent tenants", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve tenants.")
		return
	}

	if tenants == nil {
		tenants = []models.RentTenant{}
	}
	writeJSON(w, http.StatusOK, tenants)
}

func (s *Server) handleGetRentMonth(w http.ResponseWriter, r *http.Request) {
	monthStart, err := ledger.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month, expected YYYY-MM.")
		return
	}

	month, err := s.ledger.RentMonth(r.Context(), monthStart)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			writeError(w, http.StatusNotFound, "rent month not found")
			return
		}
		s.logger.Error("error retrieving rent month",
			zap.Time("month_start", monthStart),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve rent month.")
		return
	}

	writeJSON(w, http.StatusOK, toRentMonthResponse(month))
}

func (s *Server) handleSaveRentMonth(w http.ResponseWriter, r *http.Request) {
	monthParam := chi.URLParam(r, "month")
	monthStart, err := ledger.ParseMonth(monthParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month, expected YYYY-MM.")
		return
	}

	var reqs []rentRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	records := make([]models.RentRecord, 0, len(reqs))
	for _, req := range reqs {
		rent, err := ledger.ParseMonthlyRent(req.MonthlyRent)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		records = append(records, models.RentRecord{
			TenantBaseID:   req.TenantBaseID,
			MonthlyRent:    rent,
			AmountDue:      req.AmountDue,
			AmountReceived: req.AmountReceived,
		})
	}

	month, err := s.ledger.SaveRentMonth(r.Context(), monthStart, records)
	if err != nil {
		s.logger.Error("error saving rent month",
			zap.Time("month_start", monthStart),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save rent month.")
		return
	}
	s.publish(events.KindRentMonthSaved, monthParam)

	writeJSON(w, http.StatusOK, toRentMonthResponse(month))
}
