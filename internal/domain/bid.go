package domain

import "time"

type MarketType string

const (
	MarketDayAhead MarketType = "day_ahead"
	MarketRealTime MarketType = "real_time"
)

type BidStatus string

const (
	BidPending  BidStatus = "pending"
	BidAccepted BidStatus = "accepted"
	BidRejected BidStatus = "rejected"
	BidCleared  BidStatus = "cleared"
)

// MaxBidsPerHour is the cap on bids targeting the same hour slot
// within a single submission.
const MaxBidsPerHour = 10

// CutoffHour is the hour of day (UTC) after which same-day
// submissions are no longer accepted.
const CutoffHour = 11

// Bid is a single hourly day-ahead bid. The ID is assigned by the
// engine when the submission is processed, never by the caller.
type Bid struct {
	ID          string    `json:"id"`
	HourSlot    int       `json:"hour_slot"` // 0-23
	Price       float64   `json:"price"`     // $/MWh, > 0
	Quantity    float64   `json:"quantity"`  // MWh, > 0
	SubmittedAt time.Time `json:"submitted_at"`
	Status      BidStatus `json:"status"`
}

// BidSubmission is a batch of bids for one trading day.
type BidSubmission struct {
	Bids       []Bid     `json:"bids"`
	TradingDay time.Time `json:"trading_day"`
}

// SubmitResult reports the outcome of a processed submission.
type SubmitResult struct {
	AcceptedIDs []string `json:"accepted_bids"`
	RejectedIDs []string `json:"rejected_bids"`
	Message     string   `json:"message"`
}
