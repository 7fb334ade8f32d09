package usecase

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/vadimk/energy_trading_desk/internal/domain"
	"go.uber.org/zap"
)

const (
	priceCacheTTL     = 5 * time.Minute
	priceCacheMaxSize = 100
)

type priceCacheEntry struct {
	observations []domain.PriceObservation
	fetchedAt    time.Time
}

// MarketService fronts the price feed with a short-lived cache and a
// mock fallback, so upstream hiccups and rate limits never surface to
// the trading endpoints.
type MarketService struct {
	feed     domain.PriceFeed
	fallback domain.PriceFeed
	logger   *zap.Logger

	mu    sync.RWMutex
	cache map[string]priceCacheEntry

	timeNow func() time.Time
}

func NewMarketService(feed, fallback domain.PriceFeed, logger *zap.Logger) *MarketService {
	return &MarketService{
		feed:     feed,
		fallback: fallback,
		logger:   logger,
		cache:    make(map[string]priceCacheEntry),
		timeNow:  time.Now,
	}
}

// GetDayAheadPrices returns hourly DA observations for [start, end].
func (s *MarketService) GetDayAheadPrices(ctx context.Context, start, end time.Time) ([]domain.PriceObservation, error) {
	return s.fetchCached(ctx, domain.MarketDayAhead, start, end)
}

// GetRealTimePrices returns 5-minute RT observations for [start, end].
func (s *MarketService) GetRealTimePrices(ctx context.Context, start, end time.Time) ([]domain.PriceObservation, error) {
	return s.fetchCached(ctx, domain.MarketRealTime, start, end)
}

func (s *MarketService) fetchCached(ctx context.Context, market domain.MarketType, start, end time.Time) ([]domain.PriceObservation, error) {
	key := cacheKey(market, start, end)
	now := s.timeNow()

	s.mu.RLock()
	entry, ok := s.cache[key]
	s.mu.RUnlock()
	if ok && now.Sub(entry.fetchedAt) < priceCacheTTL {
		return entry.observations, nil
	}

	observations, err := s.feed.Fetch(ctx, market, start, end)
	if err != nil {
		s.logger.Error("Price feed fetch failed, falling back to mock data",
			zap.String("market", string(market)), zap.Error(err))
		if s.fallback == nil {
			return nil, err
		}
		observations, err = s.fallback.Fetch(ctx, market, start, end)
		if err != nil {
			return nil, fmt.Errorf("mock fallback failed: %w", err)
		}
	}

	s.mu.Lock()
	s.evictLocked(now)
	s.cache[key] = priceCacheEntry{observations: observations, fetchedAt: now}
	s.mu.Unlock()

	return observations, nil
}

// evictLocked drops expired entries and, if the cache is still full,
// the oldest one. Callers derive ranges from the wall clock, so keys
// rarely repeat and the map would grow without bound otherwise.
func (s *MarketService) evictLocked(now time.Time) {
	for k, entry := range s.cache {
		if now.Sub(entry.fetchedAt) >= priceCacheTTL {
			delete(s.cache, k)
		}
	}
	for len(s.cache) >= priceCacheMaxSize {
		var oldestKey string
		var oldestAt time.Time
		for k, entry := range s.cache {
			if oldestKey == "" || entry.fetchedAt.Before(oldestAt) {
				oldestKey, oldestAt = k, entry.fetchedAt
			}
		}
		delete(s.cache, oldestKey)
	}
}

// LatestRTPrice returns the most recent real-time observation from the
// past hour, or false when no data exists yet.
func (s *MarketService) LatestRTPrice(ctx context.Context) (domain.PriceObservation, bool) {
	end := s.timeNow()
	observations, err := s.GetRealTimePrices(ctx, end.Add(-time.Hour), end)
	if err != nil || len(observations) == 0 {
		return domain.PriceObservation{}, false
	}
	return observations[len(observations)-1], true
}

// MarketStats computes 24-hour statistics over real-time prices. The
// trend compares the last hour's mean against the hour before it with
// a 5% dead band. Returns flat defaults when no data is available.
func (s *MarketService) MarketStats(ctx context.Context) (*domain.MarketStats, error) {
	end := s.timeNow()
	observations, err := s.GetRealTimePrices(ctx, end.Add(-24*time.Hour), end)
	if err != nil {
		return nil, err
	}
	if len(observations) == 0 {
		return &domain.MarketStats{
			AvgPrice24h: 50.0,
			MinPrice24h: 30.0,
			MaxPrice24h: 80.0,
			Volatility:  10.0,
			Trend:       "stable",
			LastUpdate:  end.UTC(),
		}, nil
	}

	prices := make([]float64, len(observations))
	for i, obs := range observations {
		prices[i] = obs.Price
	}

	stats := &domain.MarketStats{
		AvgPrice24h: mean(prices),
		MinPrice24h: minOf(prices),
		MaxPrice24h: maxOf(prices),
		Volatility:  stddev(prices),
		Trend:       trend(prices),
		LastUpdate:  end.UTC(),
	}
	return stats, nil
}

// trend compares the last 12 observations (one hour of 5-minute data)
// against the 12 before them.
func trend(prices []float64) string {
	if len(prices) < 24 {
		return "stable"
	}
	recent := mean(prices[len(prices)-12:])
	older := mean(prices[len(prices)-24 : len(prices)-12])
	switch {
	case recent > older*1.05:
		return "up"
	case recent < older*0.95:
		return "down"
	default:
		return "stable"
	}
}

func cacheKey(market domain.MarketType, start, end time.Time) string {
	return fmt.Sprintf("%s_%d_%d", market, start.Unix(), end.Unix())
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func stddev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		sum += (x - m) * (x - m)
	}
	return math.Sqrt(sum / float64(len(xs)))
}
