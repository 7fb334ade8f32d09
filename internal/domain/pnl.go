package domain

import "time"

// PnLCalculation is the settlement result for one position. It is
// recomputed on every query from the current positions and price data,
// never stored.
type PnLCalculation struct {
	PositionID  string    `json:"position_id"`
	HourSlot    int       `json:"hour_slot"`
	Quantity    float64   `json:"quantity"`
	DAPrice     float64   `json:"da_price"`
	RTPrices    []float64 `json:"rt_prices"`
	IntervalPnL []float64 `json:"interval_pnl"`
	TotalPnL    float64   `json:"total_pnl"`
	Timestamp   time.Time `json:"timestamp"`
}

// PositionPnL is one position's line in a portfolio breakdown.
type PositionPnL struct {
	PositionID string  `json:"position_id"`
	HourSlot   int     `json:"hour_slot"`
	PnL        float64 `json:"pnl"`
}

// PortfolioPnL aggregates settlement across every stored position.
type PortfolioPnL struct {
	TotalPnL     float64       `json:"total_pnl"`
	Positions    []PositionPnL `json:"positions"`
	CalculatedAt time.Time     `json:"calculated_at"`
}
