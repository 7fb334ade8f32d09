package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vadimk/energy_trading_desk/internal/domain"
	"go.uber.org/zap"
)

// TradingEngine owns the bid and position ledger. All reads and writes
// go through one mutex so no caller ever observes an accepted bid
// without its position, or vice versa.
type TradingEngine struct {
	rule    domain.BidRule
	history domain.SubmissionRepository // optional, best-effort audit trail
	logger  *zap.Logger

	mu        sync.RWMutex
	bids      map[string]*domain.Bid
	positions map[string]*domain.Position

	timeNow func() time.Time
}

func NewTradingEngine(rule domain.BidRule, history domain.SubmissionRepository, logger *zap.Logger) *TradingEngine {
	if rule == nil {
		rule = AcceptAllRule{}
	}
	return &TradingEngine{
		rule:      rule,
		history:   history,
		logger:    logger,
		bids:      make(map[string]*domain.Bid),
		positions: make(map[string]*domain.Position),
		timeNow:   time.Now,
	}
}

// Submit validates a submission as a whole, then processes each bid
// individually. Whole-submission validation failures return a
// *domain.ValidationError and leave the ledger untouched; per-bid
// business-rule rejections only skip the offending bid.
func (e *TradingEngine) Submit(ctx context.Context, submission *domain.BidSubmission) (*domain.SubmitResult, error) {
	if err := e.validateSubmission(submission); err != nil {
		return nil, err
	}

	now := e.timeNow().UTC()

	e.mu.Lock()
	var accepted, rejected []string
	processed := make([]domain.Bid, 0, len(submission.Bids))
	for _, bid := range submission.Bids {
		bid.ID = uuid.NewString()
		if bid.SubmittedAt.IsZero() {
			bid.SubmittedAt = now
		}

		if err := e.rule.Evaluate(bid, submission.TradingDay); err != nil {
			bid.Status = domain.BidRejected
			rejected = append(rejected, bid.ID)
			processed = append(processed, bid)
			continue
		}

		bid.Status = domain.BidAccepted
		stored := bid
		e.bids[bid.ID] = &stored

		pos := &domain.Position{
			ID:         uuid.NewString(),
			BidID:      bid.ID,
			HourSlot:   bid.HourSlot,
			Quantity:   bid.Quantity,
			DAPrice:    bid.Price,
			TradingDay: submission.TradingDay,
			CreatedAt:  now,
		}
		e.positions[pos.ID] = pos

		accepted = append(accepted, bid.ID)
		processed = append(processed, bid)
	}
	e.mu.Unlock()

	result := &domain.SubmitResult{
		AcceptedIDs: accepted,
		RejectedIDs: rejected,
		Message:     fmt.Sprintf("Successfully submitted %d bids", len(accepted)),
	}

	e.logger.Info("Processed bid submission",
		zap.Int("accepted", len(accepted)),
		zap.Int("rejected", len(rejected)),
		zap.Time("trading_day", submission.TradingDay))

	// History is written outside the lock; a failure here must not undo
	// an already-applied submission.
	if e.history != nil {
		if err := e.history.SaveSubmission(ctx, submission, result, processed); err != nil {
			e.logger.Error("Failed to persist submission history", zap.Error(err))
		}
	}

	return result, nil
}

func (e *TradingEngine) validateSubmission(submission *domain.BidSubmission) error {
	hourCounts := make(map[int]int)
	for _, bid := range submission.Bids {
		hourCounts[bid.HourSlot]++
		if hourCounts[bid.HourSlot] > domain.MaxBidsPerHour {
			return &domain.ValidationError{
				Kind: domain.ValidationBidCount,
				Msg: fmt.Sprintf("maximum %d bids allowed per hour slot, hour %d has %d bids",
					domain.MaxBidsPerHour, bid.HourSlot, hourCounts[bid.HourSlot]),
			}
		}
	}

	now := e.timeNow().UTC()
	day := submission.TradingDay
	if sameDate(day, now) {
		cutoff := time.Date(day.Year(), day.Month(), day.Day(), domain.CutoffHour, 0, 0, 0, time.UTC)
		if now.After(cutoff) {
			return &domain.ValidationError{
				Kind: domain.ValidationCutoff,
				Msg:  fmt.Sprintf("cannot submit bids after %02d:00 for same-day trading", domain.CutoffHour),
			}
		}
	}

	for _, bid := range submission.Bids {
		if bid.HourSlot < 0 || bid.HourSlot > 23 {
			return &domain.ValidationError{
				Kind: domain.ValidationStructural,
				Msg:  fmt.Sprintf("hour slot must be between 0 and 23, got %d", bid.HourSlot),
			}
		}
		if bid.Price <= 0 {
			return &domain.ValidationError{
				Kind: domain.ValidationStructural,
				Msg:  fmt.Sprintf("bid price must be positive, got %g", bid.Price),
			}
		}
		if bid.Quantity <= 0 {
			return &domain.ValidationError{
				Kind: domain.ValidationStructural,
				Msg:  fmt.Sprintf("bid quantity must be positive, got %g", bid.Quantity),
			}
		}
	}

	return nil
}

// ListPositions returns stored positions ordered ascending by
// (trading day, hour slot). The ordering is part of the contract;
// consumers display positions chronologically. With activeOnly set,
// positions for past calendar days are filtered out.
func (e *TradingEngine) ListPositions(activeOnly bool) []*domain.Position {
	now := e.timeNow().UTC()

	e.mu.RLock()
	positions := make([]*domain.Position, 0, len(e.positions))
	for _, p := range e.positions {
		if activeOnly && beforeDate(p.TradingDay, now) {
			continue
		}
		positions = append(positions, p)
	}
	e.mu.RUnlock()

	sort.Slice(positions, func(i, j int) bool {
		if !positions[i].TradingDay.Equal(positions[j].TradingDay) {
			return positions[i].TradingDay.Before(positions[j].TradingDay)
		}
		return positions[i].HourSlot < positions[j].HourSlot
	})
	return positions
}

// GetBid returns a stored bid by id.
func (e *TradingEngine) GetBid(id string) (*domain.Bid, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	bid, ok := e.bids[id]
	if !ok {
		return nil, false
	}
	copied := *bid
	return &copied, true
}

// ExpirePositions deletes every position whose trading day is more
// than 24 hours before now. The cutoff is evaluated once, so a
// position created while the sweep runs can never be stale enough to
// be deleted. Idempotent; returns the number removed.
func (e *TradingEngine) ExpirePositions(now time.Time) int {
	cutoff := now.Add(-24 * time.Hour)

	e.mu.Lock()
	var expired []string
	for id, p := range e.positions {
		if p.TradingDay.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(e.positions, id)
	}
	e.mu.Unlock()

	if len(expired) > 0 {
		e.logger.Info("Cleared expired positions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// beforeDate reports whether a's calendar date is strictly before b's.
func beforeDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
