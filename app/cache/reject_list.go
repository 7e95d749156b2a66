package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/rss-relay/app/rejects"
)

var _ rejects.Log = (*RejectList)(nil)

// RejectList stores reject records as JSON entries of a Redis list
type RejectList struct {
	cache *Cache
}

func NewRejectList(cache *Cache) *RejectList {
	return &RejectList{cache: cache}
}

func (l *RejectList) Append(ctx context.Context, record rejects.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal reject record: %w", err)
	}

	if err := l.cache.client.RPush(ctx, l.cache.key("rejects"), data).Err(); err != nil {
		return fmt.Errorf("failed to append reject record: %w", err)
	}

	return nil
}

func (l *RejectList) List(ctx context.Context, limit int) ([]rejects.Record, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}

	entries, err := l.cache.client.LRange(ctx, l.cache.key("rejects"), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read reject records: %w", err)
	}

	records := make([]rejects.Record, 0, len(entries))
	for _, entry := range entries {
		var record rejects.Record
		if err := json.Unmarshal([]byte(entry), &record); err != nil {
			slog.Warn("Skipping malformed reject record", "backend", "redis", "error", err)
			continue
		}
		records = append(records, record)
	}

	return records, nil
}
