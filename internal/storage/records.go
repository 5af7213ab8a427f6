package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bizmatch/dealmaker/internal/common"
	"github.com/bizmatch/dealmaker/internal/service"
)

// SaveListing upserts a raw seller record.
func (s *SQLiteStorage) SaveListing(ctx context.Context, id string, fields map[string]any) error {
	return s.saveRecord(ctx, "listings", id, fields)
}

// GetListing returns a stored seller record by id.
func (s *SQLiteStorage) GetListing(ctx context.Context, id string) (*service.RawRecord, error) {
	return s.getRecord(ctx, "listings", id)
}

// ListListings returns all stored seller records, oldest first.
func (s *SQLiteStorage) ListListings(ctx context.Context) ([]service.RawRecord, error) {
	return s.listRecords(ctx, "listings")
}

// SaveBuyer upserts a raw buyer record.
func (s *SQLiteStorage) SaveBuyer(ctx context.Context, id string, fields map[string]any) error {
	return s.saveRecord(ctx, "buyers", id, fields)
}

// GetBuyer returns a stored buyer record by id.
func (s *SQLiteStorage) GetBuyer(ctx context.Context, id string) (*service.RawRecord, error) {
	return s.getRecord(ctx, "buyers", id)
}

// ListBuyers returns all stored buyer records, oldest first.
func (s *SQLiteStorage) ListBuyers(ctx context.Context) ([]service.RawRecord, error) {
	return s.listRecords(ctx, "buyers")
}

func (s *SQLiteStorage) saveRecord(ctx context.Context, table, id string, fields map[string]any) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	encoded, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal record fields: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, fields) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET fields = excluded.fields`, table)
	if _, err := s.db.ExecContext(ctx, query, id, string(encoded)); err != nil {
		return fmt.Errorf("failed to save %s record: %w", table, err)
	}

	slog.Debug("saved record", "table", table, "id", id)
	return nil
}

func (s *SQLiteStorage) getRecord(ctx context.Context, table, id string) (*service.RawRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, fields, created_at FROM %s WHERE id = ?`, table)

	record, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %q: %w", table, id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s record: %w", table, err)
	}
	return record, nil
}

func (s *SQLiteStorage) listRecords(ctx context.Context, table string) ([]service.RawRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, fields, created_at FROM %s ORDER BY created_at, id`, table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s records: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var records []service.RawRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", table, err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s records: %w", table, err)
	}

	slog.Debug("listed records", "table", table, "count", len(records))
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*service.RawRecord, error) {
	var record service.RawRecord
	var encoded string
	if err := row.Scan(&record.ID, &encoded, &record.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(encoded), &record.Fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record fields: %w", err)
	}
	return &record, nil
}
