package domain

import "time"

// Position is the delivery commitment created from an accepted bid,
// exactly one per bid. DAPrice is copied from the bid at acceptance;
// the position never changes after creation except through expiry.
type Position struct {
	ID         string    `json:"id"`
	BidID      string    `json:"bid_id"`
	HourSlot   int       `json:"hour_slot"`
	Quantity   float64   `json:"quantity"`
	DAPrice    float64   `json:"da_price"`
	TradingDay time.Time `json:"trading_day"`
	CreatedAt  time.Time `json:"created_at"`
}

// DeliveryWindow returns the [start, end) interval of the position's
// delivery hour on its trading day.
func (p *Position) DeliveryWindow() (time.Time, time.Time) {
	day := p.TradingDay
	start := time.Date(day.Year(), day.Month(), day.Day(), p.HourSlot, 0, 0, 0, day.Location())
	return start, start.Add(time.Hour)
}
