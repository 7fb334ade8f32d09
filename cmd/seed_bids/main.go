package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/vadimk/energy_trading_desk/internal/domain"
)

// Posts a small demo submission against a running server so the
// dashboard has positions to show.
func main() {
	addr := flag.String("addr", "http://localhost:8080", "server base URL")
	flag.Parse()

	tomorrow := time.Now().UTC().Add(24 * time.Hour).Truncate(24 * time.Hour)
	submission := domain.BidSubmission{
		TradingDay: tomorrow,
		Bids: []domain.Bid{
			{HourSlot: 8, Price: 62.50, Quantity: 25},
			{HourSlot: 12, Price: 48.00, Quantity: 50},
			{HourSlot: 18, Price: 71.25, Quantity: 40},
		},
	}

	body, err := json.Marshal(submission)
	if err != nil {
		log.Fatalf("Failed to marshal submission: %v", err)
	}

	resp, err := http.Post(*addr+"/api/bids/submit", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("Failed to submit bids: %v", err)
	}
	defer resp.Body.Close()

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Fatalf("Failed to decode response: %v", err)
	}

	fmt.Printf("HTTP %d\n", resp.StatusCode)
	for k, v := range result {
		fmt.Printf("%s: %v\n", k, v)
	}
}
