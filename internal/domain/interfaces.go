package domain

import (
	"context"
	"time"
)

// PriceFeed supplies market price observations for a time range.
// Implementations must return observations sorted by ascending
// timestamp and may return an empty slice when no data exists.
type PriceFeed interface {
	Fetch(ctx context.Context, market MarketType, start, end time.Time) ([]PriceObservation, error)
}

// BidRule evaluates a single bid against a business rule. A nil error
// accepts the bid; any error rejects that bid without failing the rest
// of the submission.
type BidRule interface {
	Evaluate(bid Bid, tradingDay time.Time) error
}

// SubmissionRepository persists processed submissions for audit
// history. The in-memory ledger stays authoritative; the engine never
// reads history back for decisions.
type SubmissionRepository interface {
	SaveSubmission(ctx context.Context, submission *BidSubmission, result *SubmitResult, bids []Bid) error
	ListBids(ctx context.Context, limit int) ([]*Bid, error)
}
