package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vadimk/energy_trading_desk/internal/domain"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 10 * time.Second,
	// Browser clients connect from the dashboard origin; CORS policy
	// is handled at the HTTP layer.
	CheckOrigin: func(*http.Request) bool { return true },
}

// PriceUpdate is the frame pushed to subscribers when a new real-time
// price arrives.
type PriceUpdate struct {
	Type string          `json:"type"`
	Data PriceUpdateData `json:"data"`
}

type PriceUpdateData struct {
	Timestamp time.Time         `json:"timestamp"`
	Price     float64           `json:"price"`
	Market    domain.MarketType `json:"market"`
}

// Hub tracks websocket subscribers and fans price updates out to all
// of them. Connections that fail a write are dropped.
type Hub struct {
	logger *zap.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger: logger,
		conns:  make(map[*websocket.Conn]bool),
	}
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = true
	n := len(h.conns)
	h.mu.Unlock()
	h.logger.Info("Client connected", zap.Int("connections", n))
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		conn.Close()
	}
	n := len(h.conns)
	h.mu.Unlock()
	h.logger.Info("Client disconnected", zap.Int("connections", n))
}

// Broadcast sends a price update to every subscriber.
func (h *Hub) Broadcast(update PriceUpdate) {
	h.mu.Lock()
	var dead []*websocket.Conn
	for conn := range h.conns {
		if err := conn.WriteJSON(update); err != nil {
			dead = append(dead, conn)
		}
	}
	for _, conn := range dead {
		delete(h.conns, conn)
		conn.Close()
	}
	h.mu.Unlock()

	if len(dead) > 0 {
		h.logger.Warn("Dropped dead websocket connections", zap.Int("count", len(dead)))
	}
}

// ConnectionCount returns the number of live subscribers.
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (s *Server) handlePriceSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}
	s.hub.add(conn)
	defer s.hub.remove(conn)

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		// Echo for connection testing; updates are pushed by the
		// broadcast task, clients never need to poll.
		if msgType == websocket.TextMessage && string(msg) == "ping" {
			if err := conn.WriteMessage(websocket.TextMessage, []byte("pong")); err != nil {
				return
			}
		}
	}
}
