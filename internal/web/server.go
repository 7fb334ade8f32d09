package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"github.com/vadimk/energy_trading_desk/internal/domain"
	"github.com/vadimk/energy_trading_desk/internal/usecase"
	"go.uber.org/zap"
)

type Server struct {
	router  *http.ServeMux
	server  *http.Server
	engine  *usecase.TradingEngine
	market  *usecase.MarketService
	history domain.SubmissionRepository
	hub     *Hub
	logger  *zap.Logger
}

func NewServer(
	port int,
	engine *usecase.TradingEngine,
	market *usecase.MarketService,
	history domain.SubmissionRepository,
	hub *Hub,
	logger *zap.Logger,
) *Server {
	s := &Server{
		router:  http.NewServeMux(),
		engine:  engine,
		market:  market,
		history: history,
		hub:     hub,
		logger:  logger,
	}
	s.routes()

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(s.router)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}
	return s
}

func (s *Server) routes() {
	// Health
	s.router.HandleFunc("GET /health", s.handleHealth)

	// Bids
	s.router.HandleFunc("POST /api/bids/submit", s.handleSubmitBids)
	s.router.HandleFunc("GET /api/bids/history", s.handleBidHistory)

	// Market data
	s.router.HandleFunc("GET /api/market/day-ahead", s.handleDayAheadPrices)
	s.router.HandleFunc("GET /api/market/realtime", s.handleRealTimePrices)
	s.router.HandleFunc("GET /api/market/stats", s.handleMarketStats)

	// Positions
	s.router.HandleFunc("GET /api/positions", s.handlePositions)

	// P&L
	s.router.HandleFunc("GET /api/pnl/calculate/{id}", s.handlePositionPnL)
	s.router.HandleFunc("GET /api/pnl/portfolio", s.handlePortfolioPnL)

	// Real-time price stream
	s.router.HandleFunc("GET /ws/prices", s.handlePriceSocket)
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
