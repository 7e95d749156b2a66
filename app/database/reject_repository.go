package database

import (
	"context"
	"fmt"
	"time"

	"github.com/lysyi3m/rss-relay/app/rejects"
)

// RejectRepository stores the reject log in the rejected_items table
type RejectRepository struct {
	db *DB
}

// NewRejectRepository creates a new reject repository
func NewRejectRepository(db *DB) *RejectRepository {
	return &RejectRepository{db: db}
}

// Append inserts a reject record
func (r *RejectRepository) Append(ctx context.Context, record rejects.Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rejected_items (title, link, source, reason, rejected_at)
		VALUES (?, ?, ?, ?, ?)
	`, record.Title, record.Link, record.Source, string(record.Reason), record.Time.UTC())

	if err != nil {
		return fmt.Errorf("failed to insert reject record: %w", err)
	}

	return nil
}

// List returns the newest records in insertion order
func (r *RejectRepository) List(ctx context.Context, limit int) ([]rejects.Record, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT title, link, source, reason, rejected_at FROM (
			SELECT id, title, link, source, reason, rejected_at
			FROM rejected_items
			ORDER BY id DESC
			LIMIT ?
		) ORDER BY id ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reject records: %w", err)
	}
	defer rows.Close()

	var records []rejects.Record
	for rows.Next() {
		var record rejects.Record
		var reason string
		var rejectedAt time.Time
		if err := rows.Scan(&record.Title, &record.Link, &record.Source, &reason, &rejectedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reject row: %w", err)
		}
		record.Reason = rejects.Reason(reason)
		record.Time = rejectedAt
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reject rows: %w", err)
	}

	return records, nil
}

// CountByReason returns reject totals per reason
func (r *RejectRepository) CountByReason(ctx context.Context) (map[rejects.Reason]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT reason, COUNT(*) FROM rejected_items GROUP BY reason`)
	if err != nil {
		return nil, fmt.Errorf("failed to count reject records: %w", err)
	}
	defer rows.Close()

	counts := make(map[rejects.Reason]int)
	for rows.Next() {
		var reason string
		var count int
		if err := rows.Scan(&reason, &count); err != nil {
			return nil, fmt.Errorf("failed to scan reject count: %w", err)
		}
		counts[rejects.Reason(reason)] = count
	}

	return counts, rows.Err()
}
