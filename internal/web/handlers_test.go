package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vadimk/energy_trading_desk/internal/domain"
	"github.com/vadimk/energy_trading_desk/internal/usecase"
	"go.uber.org/zap"
)

type stubFeed struct {
	observations []domain.PriceObservation
}

func (f *stubFeed) Fetch(_ context.Context, market domain.MarketType, start, end time.Time) ([]domain.PriceObservation, error) {
	return f.observations, nil
}

type stubHistory struct {
	bids []*domain.Bid
}

func (h *stubHistory) SaveSubmission(context.Context, *domain.BidSubmission, *domain.SubmitResult, []domain.Bid) error {
	return nil
}

func (h *stubHistory) ListBids(context.Context, int) ([]*domain.Bid, error) {
	return h.bids, nil
}

func newTestServer(t *testing.T, feed domain.PriceFeed) (*Server, *usecase.TradingEngine) {
	t.Helper()
	logger := zap.NewNop()
	if feed == nil {
		feed = &stubFeed{}
	}
	engine := usecase.NewTradingEngine(nil, &stubHistory{}, logger)
	market := usecase.NewMarketService(feed, nil, logger)
	return NewServer(0, engine, market, &stubHistory{}, NewHub(logger), logger), engine
}

// tomorrow keeps submissions clear of the same-day cutoff.
func tomorrow() time.Time {
	return time.Now().UTC().Add(24 * time.Hour).Truncate(24 * time.Hour)
}

func postSubmission(t *testing.T, s *Server, submission domain.BidSubmission) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(submission)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/bids/submit", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestHandleSubmitBids_Success(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := postSubmission(t, s, domain.BidSubmission{
		TradingDay: tomorrow(),
		Bids: []domain.Bid{
			{HourSlot: 8, Price: 45.0, Quantity: 50.0},
			{HourSlot: 9, Price: 47.0, Quantity: 20.0},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["status"] != "success" {
		t.Errorf("status field = %v", body["status"])
	}
	if accepted, ok := body["accepted_bids"].([]any); !ok || len(accepted) != 2 {
		t.Errorf("accepted_bids = %v", body["accepted_bids"])
	}
}

func TestHandleSubmitBids_ValidationErrorCarriesKind(t *testing.T) {
	s, _ := newTestServer(t, nil)

	bids := make([]domain.Bid, 11)
	for i := range bids {
		bids[i] = domain.Bid{HourSlot: 7, Price: 50.0, Quantity: 10.0}
	}
	rec := postSubmission(t, s, domain.BidSubmission{TradingDay: tomorrow(), Bids: bids})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["kind"] != string(domain.ValidationBidCount) {
		t.Errorf("kind = %v, want %s", body["kind"], domain.ValidationBidCount)
	}
}

func TestHandleSubmitBids_MalformedBody(t *testing.T) {
	s, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/bids/submit", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlePositions(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := postSubmission(t, s, domain.BidSubmission{
		TradingDay: tomorrow(),
		Bids:       []domain.Bid{{HourSlot: 8, Price: 45.0, Quantity: 50.0}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit failed: %s", rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/positions", nil)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["count"] != float64(1) {
		t.Errorf("count = %v, want 1", body["count"])
	}
}

func TestHandlePositions_BadQuery(t *testing.T) {
	s, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/positions?active_only=nope", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlePositionPnL_NotFound(t *testing.T) {
	s, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/pnl/calculate/nope", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlePositionPnL_Success(t *testing.T) {
	tradingDay := tomorrow()
	hourStart := time.Date(tradingDay.Year(), tradingDay.Month(), tradingDay.Day(), 8, 0, 0, 0, time.UTC)
	feed := &stubFeed{}
	for i := 0; i < 12; i++ {
		feed.observations = append(feed.observations, domain.PriceObservation{
			Timestamp: hourStart.Add(time.Duration(i) * 5 * time.Minute),
			Price:     50.0,
			Market:    domain.MarketRealTime,
		})
	}

	s, engine := newTestServer(t, feed)
	rec := postSubmission(t, s, domain.BidSubmission{
		TradingDay: tradingDay,
		Bids:       []domain.Bid{{HourSlot: 8, Price: 45.0, Quantity: 50.0}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit failed: %s", rec.Body.String())
	}

	positions := engine.ListPositions(false)
	if len(positions) != 1 {
		t.Fatalf("positions = %d", len(positions))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/pnl/calculate/"+positions[0].ID, nil)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	if data["total_pnl"] != float64(3000) {
		t.Errorf("total_pnl = %v, want 3000", data["total_pnl"])
	}
}

func TestHandlePortfolioPnL_EmptyLedger(t *testing.T) {
	s, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/pnl/portfolio", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	if data["total_pnl"] != float64(0) {
		t.Errorf("total_pnl = %v, want 0", data["total_pnl"])
	}
}

func TestHandleRealTimePrices_Envelope(t *testing.T) {
	now := time.Now().UTC()
	feed := &stubFeed{observations: []domain.PriceObservation{
		{Timestamp: now.Add(-10 * time.Minute), Price: 48.0, Market: domain.MarketRealTime},
		{Timestamp: now.Add(-5 * time.Minute), Price: 52.0, Market: domain.MarketRealTime},
	}}
	s, _ := newTestServer(t, feed)

	req := httptest.NewRequest(http.MethodGet, "/api/market/realtime?hours=1", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "success" {
		t.Errorf("status = %v", body["status"])
	}
	if data, ok := body["data"].([]any); !ok || len(data) != 2 {
		t.Errorf("data = %v", body["data"])
	}
	if _, ok := body["period"].(map[string]any); !ok {
		t.Errorf("period missing: %v", body["period"])
	}
}

func TestHandleMarketStats(t *testing.T) {
	s, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/market/stats", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	if data["trend"] != "stable" {
		t.Errorf("trend = %v, want stable for empty feed", data["trend"])
	}
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
