package domain

import "time"

// DefaultLocation is the CAISO pricing node observations are scoped to
// unless configured otherwise.
const DefaultLocation = "TH_NP15_GEN-APND"

// PriceObservation is a provider-supplied price point: hourly for the
// day-ahead market, 5-minute for real-time. Read-only input to the engine.
type PriceObservation struct {
	Timestamp time.Time  `json:"timestamp"`
	Hour      int        `json:"hour"`
	Price     float64    `json:"price"`
	Market    MarketType `json:"market_type"`
	Location  string     `json:"location"`
}

// MarketStats summarizes the last 24 hours of real-time prices.
type MarketStats struct {
	AvgPrice24h float64   `json:"avg_price_24h"`
	MinPrice24h float64   `json:"min_price_24h"`
	MaxPrice24h float64   `json:"max_price_24h"`
	Volatility  float64   `json:"volatility"`
	Trend       string    `json:"trend"` // "up", "down" or "stable"
	LastUpdate  time.Time `json:"last_update"`
}
