package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/evcraddock/arv/internal/comps"
	"github.com/evcraddock/arv/internal/logging"
	"github.com/evcraddock/arv/internal/report"
	"github.com/evcraddock/arv/internal/valuation"
)

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	apiJSON(w, map[string]string{"error": msg}, code)
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// valuationRequest is the body of POST /api/valuations.
type valuationRequest struct {
	Address string  `json:"address"`
	Sqft    float64 `json:"sqft"`
	LotSize float64 `json:"lot_size"`
	Save    bool    `json:"save"`
}

// valuationResponse wraps a valuation with presentation hints.
type valuationResponse struct {
	*comps.Valuation
	Status   comps.Status `json:"status"`
	Columns  []string     `json:"columns"`
	ReportID int64        `json:"report_id,omitempty"`
}

// handleValuations routes /api/valuations.
func (s *Server) handleValuations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.apiCreateValuation(w, r)
	case http.MethodGet:
		s.apiListValuations(w, r)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleValuationRoute routes /api/valuations/{id}.
func (s *Server) handleValuationRoute(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/valuations/"), "/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		apiError(w, "invalid valuation ID", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.apiGetValuation(w, id)
	case http.MethodDelete:
		s.apiDeleteValuation(w, id)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// apiCreateValuation runs a valuation and optionally saves it.
func (s *Server) apiCreateValuation(w http.ResponseWriter, r *http.Request) {
	var req valuationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	subject := comps.Subject{
		Address:        strings.TrimSpace(req.Address),
		LivingAreaSqft: req.Sqft,
		LotSizeSqft:    req.LotSize,
	}

	v, err := s.valuer.Value(r.Context(), subject)
	if err != nil {
		var inputErr *comps.InvalidInputError
		if errors.As(err, &inputErr) {
			apiError(w, inputErr.Error(), http.StatusBadRequest)
			return
		}
		logging.FromContext(r.Context()).Error("valuation failed", "error", err)
		apiError(w, "valuation failed", http.StatusInternalServerError)
		return
	}

	resp := valuationResponse{Valuation: v, Status: v.Status(), Columns: comps.Columns(v.Comps)}
	if req.Save {
		rep, err := s.valuer.Save(v)
		if errors.Is(err, valuation.ErrNoStore) {
			apiError(w, "valuation history not available", http.StatusServiceUnavailable)
			return
		}
		if err != nil {
			logging.FromContext(r.Context()).Error("saving valuation", "error", err)
			apiError(w, "saving valuation failed", http.StatusInternalServerError)
			return
		}
		resp.ReportID = rep.ID
	}

	apiJSON(w, resp, http.StatusOK)
}

// apiListValuations returns saved report summaries.
func (s *Server) apiListValuations(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		apiError(w, "valuation history not available", http.StatusServiceUnavailable)
		return
	}

	opts := report.ListOptions{Address: r.URL.Query().Get("address")}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			apiError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		opts.Limit = limit
	}

	reports, err := s.reports.List(opts)
	if err != nil {
		apiError(w, "listing valuations failed", http.StatusInternalServerError)
		return
	}
	if reports == nil {
		reports = []*report.Report{}
	}

	apiJSON(w, reports, http.StatusOK)
}

// apiGetValuation returns one saved report with its full valuation.
func (s *Server) apiGetValuation(w http.ResponseWriter, id int64) {
	if s.reports == nil {
		apiError(w, "valuation history not available", http.StatusServiceUnavailable)
		return
	}

	rep, err := s.reports.GetByID(id)
	if errors.Is(err, report.ErrNotFound) {
		apiError(w, "valuation not found", http.StatusNotFound)
		return
	}
	if err != nil {
		apiError(w, "loading valuation failed", http.StatusInternalServerError)
		return
	}

	apiJSON(w, rep, http.StatusOK)
}

// apiDeleteValuation removes a saved report.
func (s *Server) apiDeleteValuation(w http.ResponseWriter, id int64) {
	if s.reports == nil {
		apiError(w, "valuation history not available", http.StatusServiceUnavailable)
		return
	}

	err := s.reports.Delete(id)
	if errors.Is(err, report.ErrNotFound) {
		apiError(w, "valuation not found", http.StatusNotFound)
		return
	}
	if err != nil {
		apiError(w, "deleting valuation failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
