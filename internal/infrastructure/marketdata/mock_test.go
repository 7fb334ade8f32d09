package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/vadimk/energy_trading_desk/internal/domain"
)

func TestMockFeed_RealTimeGranularity(t *testing.T) {
	feed := NewMockFeed("", 1)
	start := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	obs, err := feed.Fetch(context.Background(), domain.MarketRealTime, start, end)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	// Inclusive of both endpoints: 13 five-minute steps across an hour.
	if len(obs) != 13 {
		t.Fatalf("observations = %d, want 13", len(obs))
	}
	for i, o := range obs {
		if want := start.Add(time.Duration(i) * 5 * time.Minute); !o.Timestamp.Equal(want) {
			t.Errorf("obs[%d].Timestamp = %v, want %v", i, o.Timestamp, want)
		}
		if o.Price <= 0 {
			t.Errorf("obs[%d].Price = %g, want > 0", i, o.Price)
		}
		if o.Market != domain.MarketRealTime {
			t.Errorf("obs[%d].Market = %s", i, o.Market)
		}
		if o.Location != domain.DefaultLocation {
			t.Errorf("obs[%d].Location = %s", i, o.Location)
		}
	}
}

func TestMockFeed_UnalignedStartStaysInRange(t *testing.T) {
	feed := NewMockFeed("", 1)
	// 10:30 does not sit on an hourly boundary; the first observation
	// must not land before it.
	start := time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)

	obs, err := feed.Fetch(context.Background(), domain.MarketDayAhead, start, end)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(obs) == 0 {
		t.Fatal("no observations")
	}
	if want := time.Date(2024, 3, 14, 11, 0, 0, 0, time.UTC); !obs[0].Timestamp.Equal(want) {
		t.Errorf("first timestamp = %v, want %v", obs[0].Timestamp, want)
	}
	for i, o := range obs {
		if o.Timestamp.Before(start) || o.Timestamp.After(end) {
			t.Errorf("obs[%d].Timestamp = %v outside [%v, %v]", i, o.Timestamp, start, end)
		}
	}
}

func TestMockFeed_DayAheadGranularity(t *testing.T) {
	feed := NewMockFeed("", 1)
	start := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	end := start.Add(23 * time.Hour)

	obs, err := feed.Fetch(context.Background(), domain.MarketDayAhead, start, end)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(obs) != 24 {
		t.Fatalf("observations = %d, want 24", len(obs))
	}
	for i := 1; i < len(obs); i++ {
		if obs[i].Timestamp.Sub(obs[i-1].Timestamp) != time.Hour {
			t.Fatalf("gap between obs[%d] and obs[%d] is not one hour", i-1, i)
		}
	}
}

func TestMockFeed_DeterministicWithSeed(t *testing.T) {
	start := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	a, _ := NewMockFeed("", 42).Fetch(context.Background(), domain.MarketRealTime, start, end)
	b, _ := NewMockFeed("", 42).Fetch(context.Background(), domain.MarketRealTime, start, end)

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Price != b[i].Price {
			t.Fatalf("same seed produced different prices at %d: %g vs %g", i, a[i].Price, b[i].Price)
		}
	}
}
