package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/vadimk/energy_trading_desk/internal/domain"
	"github.com/vadimk/energy_trading_desk/internal/infrastructure/logger"
	"github.com/vadimk/energy_trading_desk/internal/infrastructure/marketdata"
)

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("GRIDSTATUS_API_KEY")
	if apiKey == "" {
		fmt.Println("GRIDSTATUS_API_KEY is not set")
		os.Exit(1)
	}

	log, err := logger.NewLogger("debug")
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	client := marketdata.NewGridStatusClient(apiKey, "", "", log)
	ctx := context.Background()

	end := time.Now()
	start := end.Add(-24 * time.Hour)

	fmt.Println("Testing Grid Status Interaction...")

	da, err := client.Fetch(ctx, domain.MarketDayAhead, start, end)
	if err != nil {
		fmt.Printf("❌ Failed to fetch day-ahead prices: %v\n", err)
	} else {
		fmt.Printf("✅ Day-ahead: %d observations\n", len(da))
		if len(da) > 0 {
			last := da[len(da)-1]
			fmt.Printf("   Latest: %s $%.2f/MWh\n", last.Timestamp.Format(time.RFC3339), last.Price)
		}
	}

	rt, err := client.Fetch(ctx, domain.MarketRealTime, start, end)
	if err != nil {
		fmt.Printf("❌ Failed to fetch real-time prices: %v\n", err)
	} else {
		fmt.Printf("✅ Real-time: %d observations\n", len(rt))
		if len(rt) > 0 {
			last := rt[len(rt)-1]
			fmt.Printf("   Latest: %s $%.2f/MWh\n", last.Timestamp.Format(time.RFC3339), last.Price)
		}
	}
}
