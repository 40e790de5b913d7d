package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/stockreport/internal/common"
	"github.com/bobmcallan/stockreport/internal/models"
)

// handleHealth responds to GET/HEAD /api/health with {"status":"ok"}.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVersion responds to GET/HEAD /api/version with build metadata.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}

// handleMarket responds to GET /api/market/{code} with the segment and
// provider the identifier routes to.
func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	code := strings.TrimSpace(PathParam(r, "/api/market/", ""))
	if code == "" {
		WriteError(w, http.StatusBadRequest, "code is required")
		return
	}
	WriteJSON(w, http.StatusOK, s.app.Router.MarketInfo(code))
}

// handleLatestFinancials responds to GET /api/stocks/{code}/financials/{category}.
func (s *Server) handleLatestFinancials(w http.ResponseWriter, r *http.Request, code, category string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	cat, err := models.ParseStatementCategory(category)
	if err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "invalid_category")
		return
	}

	section := s.app.Analysis.ResolveLatest(r.Context(), code, cat)
	WriteJSON(w, http.StatusOK, section)
}

// handleSnapshot responds to GET /api/stocks/{code}/snapshot?categories=a,b.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request, code string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	var categories []models.StatementCategory
	for _, name := range splitList(r.URL.Query().Get("categories")) {
		cat, err := models.ParseStatementCategory(name)
		if err != nil {
			WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "invalid_category")
			return
		}
		categories = append(categories, cat)
	}

	snap, err := s.app.Analysis.Snapshot(r.Context(), code, categories)
	if err != nil {
		s.logger.Error().Err(err).Str("identifier", code).Msg("Snapshot failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, snap)
}

// handleHistory responds to GET /api/stocks/{code}/history. Without storage
// it answers 503.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, code string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if !s.app.Analysis.HasStore() {
		WriteErrorWithCode(w, http.StatusServiceUnavailable, "storage is not configured", "storage_disabled")
		return
	}

	records, err := s.app.Analysis.History(r.Context(), code)
	if err != nil {
		s.logger.Error().Err(err).Str("identifier", code).Msg("History failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []*models.ResolutionRecord{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"code": code, "records": records})
}
