package usecase

import (
	"time"

	"github.com/vadimk/energy_trading_desk/internal/domain"
)

// AcceptAllRule is the default bid business rule: every structurally
// valid bid clears. Credit limits, market-power restrictions and the
// like slot in here as alternative BidRule implementations without
// touching the engine's control flow.
type AcceptAllRule struct{}

func (AcceptAllRule) Evaluate(domain.Bid, time.Time) error { return nil }

// MaxQuantityRule rejects individual bids above a quantity ceiling.
// Used by tests to exercise partial acceptance; a real desk would
// configure it per counterparty.
type MaxQuantityRule struct {
	MaxMWh float64
}

func (r MaxQuantityRule) Evaluate(bid domain.Bid, _ time.Time) error {
	if bid.Quantity > r.MaxMWh {
		return &domain.ValidationError{
			Kind: domain.ValidationStructural,
			Msg:  "bid quantity exceeds allowed maximum",
		}
	}
	return nil
}
