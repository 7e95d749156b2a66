package tasks

import (
	"sync"
	"time"

	"github.com/lysyi3m/rss-relay/app/pipeline"
)

// RunHistory keeps the outcome of the most recent pipeline run for the stats endpoint.
type RunHistory struct {
	mu        sync.RWMutex
	last      *pipeline.Report
	lastError string
	runs      int
	failures  int
	updatedAt time.Time
}

type RunStats struct {
	Runs      int              `json:"runs"`
	Failures  int              `json:"failures"`
	LastError string           `json:"last_error,omitempty"`
	UpdatedAt *time.Time       `json:"updated_at,omitempty"`
	LastRun   *pipeline.Report `json:"last_run,omitempty"`
}

func NewRunHistory() *RunHistory {
	return &RunHistory{}
}

func (h *RunHistory) Record(report *pipeline.Report, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.runs++
	h.updatedAt = time.Now()
	if report != nil {
		h.last = report
	}

	if err != nil {
		h.failures++
		h.lastError = err.Error()
		return
	}
	h.lastError = ""
}

func (h *RunHistory) Stats() RunStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := RunStats{
		Runs:      h.runs,
		Failures:  h.failures,
		LastError: h.lastError,
		LastRun:   h.last,
	}
	if h.runs > 0 {
		updatedAt := h.updatedAt
		stats.UpdatedAt = &updatedAt
	}

	return stats
}
