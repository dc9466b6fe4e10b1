package server

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/stockreturns/stockreturns/internal/common"
	"github.com/stockreturns/stockreturns/internal/interfaces"
	"github.com/stockreturns/stockreturns/internal/models"
	"github.com/stockreturns/stockreturns/internal/services/returns"
)

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment": s.app.Config.Environment,
		"exchange":    s.app.Config.Exchange,
		"uptime":      time.Since(s.app.StartupTime).String(),
		"go_version":  runtime.Version(),
	})
}

// --- Returns handlers ---

// parseReturnsRequest reads the /api/returns query contract:
// symbol, from, to, shares (default 1), dividend_mode (default reinvest).
func parseReturnsRequest(r *http.Request) (interfaces.ReturnsRequest, error) {
	q := r.URL.Query()

	symbol := q.Get("symbol")
	if symbol == "" {
		return interfaces.ReturnsRequest{}, fmt.Errorf("symbol is required")
	}

	fromStr := q.Get("from")
	toStr := q.Get("to")
	if fromStr == "" || toStr == "" {
		return interfaces.ReturnsRequest{}, fmt.Errorf("from and to dates are required")
	}
	from, err := time.Parse(models.DateOnly, fromStr)
	if err != nil {
		return interfaces.ReturnsRequest{}, fmt.Errorf("invalid from date %q (want YYYY-MM-DD)", fromStr)
	}
	to, err := time.Parse(models.DateOnly, toStr)
	if err != nil {
		return interfaces.ReturnsRequest{}, fmt.Errorf("invalid to date %q (want YYYY-MM-DD)", toStr)
	}

	shares := 1.0
	if sharesStr := q.Get("shares"); sharesStr != "" {
		shares, err = strconv.ParseFloat(sharesStr, 64)
		if err != nil {
			return interfaces.ReturnsRequest{}, fmt.Errorf("invalid shares %q", sharesStr)
		}
	}

	mode, err := models.ParseReturnMode(q.Get("dividend_mode"))
	if err != nil {
		return interfaces.ReturnsRequest{}, err
	}

	return interfaces.ReturnsRequest{
		Symbol:        symbol,
		From:          from,
		To:            to,
		InitialShares: shares,
		Mode:          mode,
	}, nil
}

func (s *Server) handleReturns(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	req, err := parseReturnsRequest(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.app.ReturnsService.CalculateReturns(r.Context(), req)
	if err != nil {
		s.writeReturnsError(w, req.Symbol, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

func (s *Server) handleReturnsChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	req, err := parseReturnsRequest(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	points, result, err := s.app.ReturnsService.ValueSeries(r.Context(), req)
	if err != nil {
		s.writeReturnsError(w, req.Symbol, err)
		return
	}

	png, err := returns.RenderValueChart(result.Symbol, points)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error rendering chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// writeReturnsError maps calculation failures onto HTTP statuses: validation
// failures are the caller's fault, missing market data is 404/422, anything
// else is internal.
func (s *Server) writeReturnsError(w http.ResponseWriter, symbol string, err error) {
	if kind := returns.KindOf(err); kind != "" {
		switch kind {
		case returns.KindMissingReferencePrice:
			WriteErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), string(kind))
		case returns.KindDivisionByZero:
			WriteErrorWithCode(w, http.StatusInternalServerError, err.Error(), string(kind))
		default:
			WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), string(kind))
		}
		return
	}

	if errors.Is(err, returns.ErrNoPriceData) {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	s.logger.Error().Err(err).Str("symbol", symbol).Msg("Returns calculation failed")
	WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error calculating returns: %v", err))
}

// --- Symbol handlers ---

func (s *Server) handleSymbolSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query().Get("q")
	if q == "" {
		WriteError(w, http.StatusBadRequest, "q is required")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil {
			limit = n
		}
	}

	symbols, err := s.app.CatalogService.Search(r.Context(), q, limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error searching symbols: %v", err))
		return
	}
	if symbols == nil {
		symbols = []models.Symbol{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"symbols": symbols,
	})
}
