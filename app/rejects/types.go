package rejects

import (
	"context"
	"time"
)

type Reason string

const (
	ReasonDuplicate      Reason = "duplicate"
	ReasonNoKeywordMatch Reason = "no-keyword-match"
	ReasonDeliveryFailed Reason = "delivery-failed"
)

type Record struct {
	Title  string    `json:"title"`
	Link   string    `json:"link"`
	Source string    `json:"source,omitempty"`
	Reason Reason    `json:"reason"`
	Time   time.Time `json:"time"`
}

// Log is an append-only audit trail of rejected items.
type Log interface {
	Append(ctx context.Context, record Record) error
	// List returns the newest limit records in append order; limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Record, error)
}

func tail(records []Record, limit int) []Record {
	if limit > 0 && len(records) > limit {
		return records[len(records)-limit:]
	}
	return records
}
