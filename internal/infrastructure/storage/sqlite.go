package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/vadimk/energy_trading_desk/internal/domain"
)

// SQLiteStore keeps an audit trail of processed submissions and their
// bids. The in-memory ledger owns the live state; this store is only
// ever appended to and read back for history views.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS submissions (
			id TEXT PRIMARY KEY,
			trading_day DATETIME NOT NULL,
			accepted INTEGER NOT NULL,
			rejected INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS bids (
			id TEXT PRIMARY KEY,
			submission_id TEXT NOT NULL,
			hour_slot INTEGER NOT NULL,
			price REAL NOT NULL,
			quantity REAL NOT NULL,
			status TEXT NOT NULL,
			submitted_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_bids_submission ON bids(submission_id);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSubmission writes a submission record and its bids in one
// transaction so history never shows a half-recorded batch.
func (s *SQLiteStore) SaveSubmission(ctx context.Context, submission *domain.BidSubmission, result *domain.SubmitResult, bids []domain.Bid) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	submissionID := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO submissions (id, trading_day, accepted, rejected, created_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		submissionID, submission.TradingDay, len(result.AcceptedIDs), len(result.RejectedIDs)); err != nil {
		return err
	}

	for _, bid := range bids {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO bids (id, submission_id, hour_slot, price, quantity, status, submitted_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			bid.ID, submissionID, bid.HourSlot, bid.Price, bid.Quantity, string(bid.Status), bid.SubmittedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListBids returns the most recently submitted bids first.
func (s *SQLiteStore) ListBids(ctx context.Context, limit int) ([]*domain.Bid, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, hour_slot, price, quantity, status, submitted_at
		 FROM bids ORDER BY submitted_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		var b domain.Bid
		if err := rows.Scan(&b.ID, &b.HourSlot, &b.Price, &b.Quantity, &b.Status, &b.SubmittedAt); err != nil {
			return nil, err
		}
		bids = append(bids, &b)
	}
	return bids, rows.Err()
}
