package api

import (
	"context"

	"github.com/lysyi3m/rss-relay/app/feed"
	"github.com/lysyi3m/rss-relay/app/rejects"
	"github.com/lysyi3m/rss-relay/app/tasks"
)

const (
	defaultRejectsLimit = 50
	maxRejectsLimit     = 1000
)

// ConfigProvider returns the configuration currently in effect.
type ConfigProvider interface {
	Config() *feed.Config
}

// ReasonCounter is implemented by reject logs that can total records per reason.
type ReasonCounter interface {
	CountByReason(ctx context.Context) (map[rejects.Reason]int, error)
}

type Handler struct {
	configs   ConfigProvider
	history   *tasks.RunHistory
	rejectLog rejects.Log
	scheduler tasks.TaskSchedulerInterface
	dryRun    bool
}

type statsResponse struct {
	tasks.RunStats
	RejectsByReason map[rejects.Reason]int `json:"rejects_by_reason,omitempty"`
}
