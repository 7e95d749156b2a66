package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/rss-relay/app/pipeline"
)

const (
	TriggerStartup  = "startup"
	TriggerSchedule = "schedule"
	TriggerAPI      = "api"
)

type Runner interface {
	Run(ctx context.Context) (*pipeline.Report, error)
}

type RunPipelineTask struct {
	Task
	runner  Runner
	history *RunHistory
}

func NewRunPipelineTask(trigger string, runner Runner, history *RunHistory) *RunPipelineTask {
	return &RunPipelineTask{
		Task:    NewTask(TaskTypeRunPipeline, trigger),
		runner:  runner,
		history: history,
	}
}

func (t *RunPipelineTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	report, err := t.runner.Run(ctx)
	if t.history != nil {
		t.history.Record(report, err)
	}
	if err != nil {
		return fmt.Errorf("failed to run pipeline: %w", err)
	}

	slog.Info("Task completed",
		"type", "RunPipeline",
		"trigger", t.Trigger,
		"duration", t.GetDuration(),
		"candidates", report.Candidates,
		"accepted", report.Accepted,
		"rejected", report.TotalRejected(),
		"warnings", len(report.Warnings))

	return nil
}
