package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/bizmatch/dealmaker/internal/common"
	"github.com/bizmatch/dealmaker/internal/model"
)

// SaveStrategy persists a computed strategy. A missing ID or CreatedAt is
// filled in before the insert.
func (s *SQLiteStorage) SaveStrategy(ctx context.Context, record *model.StrategyRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("strategy record is required")
	}
	if err := validateString(record.ListingID, "listing id"); err != nil {
		return err
	}
	if err := validateString(record.BuyerID, "buyer id"); err != nil {
		return err
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	encoded, err := json.Marshal(record.Strategy)
	if err != nil {
		return fmt.Errorf("failed to marshal strategy: %w", err)
	}

	query := `INSERT INTO strategies (id, listing_id, buyer_id, strategy, narrative, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query,
		record.ID, record.ListingID, record.BuyerID, string(encoded), record.Narrative, record.CreatedAt); err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("strategy %s: %w", record.ID, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to save strategy: %w", err)
	}

	slog.Debug("saved strategy",
		"id", record.ID,
		"listing_id", record.ListingID,
		"buyer_id", record.BuyerID)
	return nil
}

// GetLatestStrategy returns the most recently computed strategy for a
// listing/buyer pair.
func (s *SQLiteStorage) GetLatestStrategy(ctx context.Context, listingID, buyerID string) (*model.StrategyRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(listingID, "listing id"); err != nil {
		return nil, err
	}
	if err := validateString(buyerID, "buyer id"); err != nil {
		return nil, err
	}

	query := `SELECT id, listing_id, buyer_id, strategy, narrative, created_at
		FROM strategies
		WHERE listing_id = ? AND buyer_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	record, err := scanStrategy(s.db.QueryRowContext(ctx, query, listingID, buyerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("strategy for %s/%s: %w", listingID, buyerID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query strategy: %w", err)
	}
	return record, nil
}

// ListStrategies returns all strategies computed for a listing, newest first.
func (s *SQLiteStorage) ListStrategies(ctx context.Context, listingID string) ([]model.StrategyRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(listingID, "listing id"); err != nil {
		return nil, err
	}

	query := `SELECT id, listing_id, buyer_id, strategy, narrative, created_at
		FROM strategies
		WHERE listing_id = ?
		ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query strategies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.StrategyRecord
	for rows.Next() {
		record, err := scanStrategy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan strategy: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating strategies: %w", err)
	}
	return records, nil
}

// SaveDraft persists a generated proposal draft.
func (s *SQLiteStorage) SaveDraft(ctx context.Context, draft *model.Draft) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if draft == nil {
		return fmt.Errorf("draft is required")
	}
	if err := validateString(draft.StrategyID, "strategy id"); err != nil {
		return err
	}

	if draft.ID == "" {
		draft.ID = uuid.NewString()
	}
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO drafts (id, strategy_id, provider, model, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query,
		draft.ID, draft.StrategyID, draft.Provider, draft.Model, draft.Content, draft.CreatedAt); err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("draft %s: %w", draft.ID, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to save draft: %w", err)
	}

	slog.Debug("saved draft", "id", draft.ID, "strategy_id", draft.StrategyID)
	return nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

func scanStrategy(row rowScanner) (*model.StrategyRecord, error) {
	var record model.StrategyRecord
	var encoded string
	if err := row.Scan(&record.ID, &record.ListingID, &record.BuyerID, &encoded, &record.Narrative, &record.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(encoded), &record.Strategy); err != nil {
		return nil, fmt.Errorf("failed to unmarshal strategy: %w", err)
	}
	return &record, nil
}
