package usecase

import (
	"github.com/vadimk/energy_trading_desk/internal/domain"
	"go.uber.org/zap"
)

// ComputePnL settles one position against a window of real-time price
// observations. Observations outside the position's delivery hour are
// ignored; the caller fetches price data up front, so no I/O happens
// under the ledger lock.
//
// Each in-window observation contributes (rt - da) * quantity, and the
// total is the raw sum across intervals. With 5-minute RT data that is
// 12 full-quantity settlements per hour rather than a time-weighted
// hourly settlement. Intentional: the desk is a simulation and keeps
// the original platform's semantics.
func (e *TradingEngine) ComputePnL(positionID string, observations []domain.PriceObservation) (*domain.PnLCalculation, error) {
	e.mu.RLock()
	position, ok := e.positions[positionID]
	e.mu.RUnlock()
	if !ok {
		return nil, domain.ErrPositionNotFound
	}

	windowStart, windowEnd := position.DeliveryWindow()

	var rtPrices []float64
	for _, obs := range observations {
		if obs.Timestamp.Before(windowStart) || !obs.Timestamp.Before(windowEnd) {
			continue
		}
		rtPrices = append(rtPrices, obs.Price)
	}

	// No RT data yet for a future hour: settle flat against the DA
	// price so unrealized positions report exactly zero.
	if len(rtPrices) == 0 {
		rtPrices = []float64{position.DAPrice}
	}

	intervalPnL := make([]float64, len(rtPrices))
	var total float64
	for i, rt := range rtPrices {
		intervalPnL[i] = (rt - position.DAPrice) * position.Quantity
		total += intervalPnL[i]
	}

	return &domain.PnLCalculation{
		PositionID:  position.ID,
		HourSlot:    position.HourSlot,
		Quantity:    position.Quantity,
		DAPrice:     position.DAPrice,
		RTPrices:    rtPrices,
		IntervalPnL: intervalPnL,
		TotalPnL:    total,
		Timestamp:   e.timeNow().UTC(),
	}, nil
}

// ComputePortfolioPnL settles every stored position and sums the
// totals. A failure on one position is logged and that position is
// skipped; it never voids the rest of the batch.
func (e *TradingEngine) ComputePortfolioPnL(observations []domain.PriceObservation) *domain.PortfolioPnL {
	e.mu.RLock()
	ids := make([]string, 0, len(e.positions))
	for id := range e.positions {
		ids = append(ids, id)
	}
	e.mu.RUnlock()

	portfolio := &domain.PortfolioPnL{CalculatedAt: e.timeNow().UTC()}
	for _, id := range ids {
		calc, err := e.ComputePnL(id, observations)
		if err != nil {
			e.logger.Error("Error calculating P&L for position",
				zap.String("position_id", id), zap.Error(err))
			continue
		}
		portfolio.Positions = append(portfolio.Positions, domain.PositionPnL{
			PositionID: calc.PositionID,
			HourSlot:   calc.HourSlot,
			PnL:        calc.TotalPnL,
		})
		portfolio.TotalPnL += calc.TotalPnL
	}
	return portfolio
}
