package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/vadimk/energy_trading_desk/internal/domain"
	"go.uber.org/zap"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]any{"status": "error", "detail": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "online",
		"api":    "Virtual Energy Trading Desk",
	})
}

func (s *Server) handleSubmitBids(w http.ResponseWriter, r *http.Request) {
	var submission domain.BidSubmission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.engine.Submit(r.Context(), &submission)
	if err != nil {
		if ve, ok := domain.AsValidation(err); ok {
			s.writeJSON(w, http.StatusBadRequest, map[string]any{
				"status": "error",
				"kind":   string(ve.Kind),
				"detail": ve.Msg,
			})
			return
		}
		s.logger.Error("Error submitting bids", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"accepted_bids": result.AcceptedIDs,
		"rejected_bids": result.RejectedIDs,
		"message":       result.Message,
	})
}

func (s *Server) handleBidHistory(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", 50, 1, 500)
	bids, err := s.history.ListBids(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list bid history", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "error fetching bid history")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   bids,
		"count":  len(bids),
	})
}

func (s *Server) handleDayAheadPrices(w http.ResponseWriter, r *http.Request) {
	days := intQuery(r, "days", 7, 1, 30)
	end := time.Now()
	start := end.Add(-time.Duration(days) * 24 * time.Hour)

	prices, err := s.market.GetDayAheadPrices(r.Context(), start, end)
	if err != nil {
		s.logger.Error("Error fetching DA prices", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "error fetching market data")
		return
	}
	s.writePrices(w, prices, start, end)
}

func (s *Server) handleRealTimePrices(w http.ResponseWriter, r *http.Request) {
	hours := intQuery(r, "hours", 24, 1, 168)
	end := time.Now()
	start := end.Add(-time.Duration(hours) * time.Hour)

	prices, err := s.market.GetRealTimePrices(r.Context(), start, end)
	if err != nil {
		s.logger.Error("Error fetching RT prices", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "error fetching market data")
		return
	}
	s.writePrices(w, prices, start, end)
}

func (s *Server) writePrices(w http.ResponseWriter, prices []domain.PriceObservation, start, end time.Time) {
	if prices == nil {
		prices = []domain.PriceObservation{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   prices,
		"period": map[string]string{
			"start": start.Format(time.RFC3339),
			"end":   end.Format(time.RFC3339),
		},
	})
}

func (s *Server) handleMarketStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.market.MarketStats(r.Context())
	if err != nil {
		s.logger.Error("Error calculating market stats", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "error calculating statistics")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": stats})
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	activeOnly := true
	if v := r.URL.Query().Get("active_only"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "active_only must be a boolean")
			return
		}
		activeOnly = parsed
	}

	positions := s.engine.ListPositions(activeOnly)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   positions,
		"count":  len(positions),
	})
}

func (s *Server) handlePositionPnL(w http.ResponseWriter, r *http.Request) {
	positionID := r.PathValue("id")

	end := time.Now()
	prices, err := s.market.GetRealTimePrices(r.Context(), end.Add(-24*time.Hour), end)
	if err != nil {
		s.logger.Error("Error fetching RT prices for P&L", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "error calculating P&L")
		return
	}

	calc, err := s.engine.ComputePnL(positionID, prices)
	if err != nil {
		if err == domain.ErrPositionNotFound {
			s.writeError(w, http.StatusNotFound, "position "+positionID+" not found")
			return
		}
		s.logger.Error("Error calculating P&L", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "error calculating P&L")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": calc})
}

func (s *Server) handlePortfolioPnL(w http.ResponseWriter, r *http.Request) {
	end := time.Now()
	prices, err := s.market.GetRealTimePrices(r.Context(), end.Add(-24*time.Hour), end)
	if err != nil {
		s.logger.Error("Error fetching RT prices for portfolio P&L", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "error calculating portfolio P&L")
		return
	}

	portfolio := s.engine.ComputePortfolioPnL(prices)
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": portfolio})
}

func intQuery(r *http.Request, name string, def, lo, hi int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return def
	}
	return n
}
