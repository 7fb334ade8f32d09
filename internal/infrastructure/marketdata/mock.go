package marketdata

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/vadimk/energy_trading_desk/internal/domain"
)

const mockBasePrice = 50.0

// MockFeed generates synthetic CAISO-shaped prices: morning and
// evening peaks, a night valley and random noise. Used when no API key
// is configured and as the fallback when the live feed fails.
type MockFeed struct {
	location string

	mu  sync.Mutex
	rng *rand.Rand
}

func NewMockFeed(location string, seed int64) *MockFeed {
	if location == "" {
		location = domain.DefaultLocation
	}
	return &MockFeed{
		location: location,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Fetch implements domain.PriceFeed. Day-ahead observations are hourly,
// real-time observations every 5 minutes.
func (m *MockFeed) Fetch(_ context.Context, market domain.MarketType, start, end time.Time) ([]domain.PriceObservation, error) {
	step := 5 * time.Minute
	noise := 8.0
	if market == domain.MarketDayAhead {
		step = time.Hour
		noise = 5.0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	first := start.Truncate(step)
	if first.Before(start) {
		first = first.Add(step)
	}

	var observations []domain.PriceObservation
	for ts := first; !ts.After(end); ts = ts.Add(step) {
		price := mockBasePrice*m.shape(market, ts.Hour()) + m.rng.NormFloat64()*noise
		if price < 0 {
			price = 0.01
		}
		observations = append(observations, domain.PriceObservation{
			Timestamp: ts,
			Hour:      ts.Hour(),
			Price:     price,
			Market:    market,
			Location:  m.location,
		})
	}
	return observations, nil
}

// shape returns a multiplier following the daily load curve. Real-time
// prices swing wider than day-ahead within the same bands.
func (m *MockFeed) shape(market domain.MarketType, hour int) float64 {
	uniform := func(lo, hi float64) float64 {
		return lo + m.rng.Float64()*(hi-lo)
	}
	rt := market == domain.MarketRealTime
	switch {
	case hour >= 6 && hour <= 9: // morning peak
		if rt {
			return uniform(1.1, 1.6)
		}
		return uniform(1.2, 1.5)
	case hour >= 17 && hour <= 21: // evening peak
		if rt {
			return uniform(1.2, 1.7)
		}
		return uniform(1.3, 1.6)
	case hour <= 5: // night valley
		if rt {
			return uniform(0.5, 0.9)
		}
		return uniform(0.6, 0.8)
	default:
		if rt {
			return uniform(0.8, 1.2)
		}
		return uniform(0.9, 1.1)
	}
}
