package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lysyi3m/rss-relay/app/feed"
	"github.com/lysyi3m/rss-relay/app/notify"
	"github.com/lysyi3m/rss-relay/app/rejects"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]feed.Item, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, item feed.Item, recipients []string) notify.Result
}

// SourceReport describes what one feed source contributed to a run.
type SourceReport struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	UsedFallback bool   `json:"used_fallback"`
	Items        int    `json:"items"`
	Accepted     int    `json:"accepted"`
	Rejected     int    `json:"rejected"`
	Error        string `json:"error,omitempty"`
}

// Report summarizes a run. Accepted + rejected + Unprocessed always equals Candidates.
type Report struct {
	RunID       uuid.UUID              `json:"run_id"`
	StartedAt   time.Time              `json:"started_at"`
	FinishedAt  time.Time              `json:"finished_at"`
	Candidates  int                    `json:"candidates"`
	Accepted    int                    `json:"accepted"`
	Rejected    map[rejects.Reason]int `json:"rejected"`
	Unprocessed int                    `json:"unprocessed"`
	Sources     []SourceReport         `json:"sources"`
	Warnings    []string               `json:"warnings,omitempty"`
}

func (r *Report) TotalRejected() int {
	total := 0
	for _, count := range r.Rejected {
		total += count
	}
	return total
}

func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

type fetchResult struct {
	items  []feed.Item
	report SourceReport
	err    error
}
