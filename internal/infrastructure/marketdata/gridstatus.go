package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/vadimk/energy_trading_desk/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.gridstatus.io"

	datasetDayAhead = "caiso_lmp_day_ahead_hourly"
	datasetRealTime = "caiso_lmp_real_time_5_min"
)

// GridStatusError is a typed error from the Grid Status API.
type GridStatusError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter string
}

func (e *GridStatusError) Error() string {
	return e.Message
}

// GridStatusClient fetches CAISO LMP data from the Grid Status API and
// implements domain.PriceFeed. Requests are throttled with a token
// bucket to stay inside the API's rate limits.
type GridStatusClient struct {
	apiKey   string
	baseURL  string
	location string
	client   *http.Client
	limiter  *rate.Limiter
	logger   *zap.Logger
}

func NewGridStatusClient(apiKey, baseURL, location string, logger *zap.Logger) *GridStatusClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if location == "" {
		location = domain.DefaultLocation
	}
	return &GridStatusClient{
		apiKey:   apiKey,
		baseURL:  baseURL,
		location: location,
		client:   &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(time.Second), 2),
		logger:   logger,
	}
}

type lmpInterval struct {
	IntervalStartUTC time.Time `json:"interval_start_utc"`
	IntervalEndUTC   time.Time `json:"interval_end_utc"`
	Market           string    `json:"market"`
	Location         string    `json:"location"`
	LMP              float64   `json:"lmp"`
}

type lmpResponse struct {
	StatusCode int           `json:"status_code"`
	Data       []lmpInterval `json:"data"`
}

// Fetch implements domain.PriceFeed. Observations come back sorted by
// ascending timestamp; an empty range yields an empty slice, not an
// error.
func (c *GridStatusClient) Fetch(ctx context.Context, market domain.MarketType, start, end time.Time) ([]domain.PriceObservation, error) {
	if c.apiKey == "" {
		return nil, &GridStatusError{Code: "MISSING_API_KEY", Message: "API key is required"}
	}
	if start.After(end) {
		return nil, fmt.Errorf("start %s is after end %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	dataset := datasetRealTime
	if market == domain.MarketDayAhead {
		dataset = datasetDayAhead
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u, err := url.Parse(c.baseURL + fmt.Sprintf("/v1/datasets/%s/query/location/%s", dataset, c.location))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("start_time", start.UTC().Format("2006-01-02"))
	q.Set("end_time", end.UTC().Format("2006-01-02"))
	q.Set("timezone", "UTC")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	began := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Grid Status response",
		zap.Int("status", resp.StatusCode),
		zap.String("dataset", dataset),
		zap.Duration("duration", time.Since(began)))

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, &GridStatusError{StatusCode: resp.StatusCode, Code: "UNAUTHORIZED", Message: "unauthorized: invalid API key"}
	case http.StatusForbidden:
		return nil, &GridStatusError{StatusCode: resp.StatusCode, Code: "INVALID_API_KEY", Message: "invalid API key or insufficient permissions"}
	case http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		return nil, &GridStatusError{
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    fmt.Sprintf("rate limit exceeded, retry after: %s", retryAfter),
			RetryAfter: retryAfter,
		}
	default:
		return nil, &GridStatusError{
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("API returned status %d: %s", resp.StatusCode, resp.Status),
		}
	}

	var result lmpResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	observations := make([]domain.PriceObservation, 0, len(result.Data))
	for _, row := range result.Data {
		ts := row.IntervalStartUTC
		if ts.Before(start) || ts.After(end) {
			continue
		}
		observations = append(observations, domain.PriceObservation{
			Timestamp: ts,
			Hour:      ts.Hour(),
			Price:     row.LMP,
			Market:    market,
			Location:  row.Location,
		})
	}
	sort.Slice(observations, func(i, j int) bool {
		return observations[i].Timestamp.Before(observations[j].Timestamp)
	})
	return observations, nil
}
