package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

var ErrQueueFull = errors.New("task queue is full")

// queueSize bounds pending runs; a run already waiting covers any later trigger.
const queueSize = 2

// Scheduler runs tasks on a single worker so pipeline runs never overlap.
type Scheduler struct {
	runner     Runner
	history    *RunHistory
	interval   time.Duration
	runTimeout time.Duration
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	taskQueue  chan TaskInterface
}

func NewScheduler(runner Runner, history *RunHistory, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner:     runner,
		history:    history,
		interval:   interval,
		runTimeout: interval,
		ctx:        ctx,
		cancel:     cancel,
		taskQueue:  make(chan TaskInterface, queueSize),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.worker()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		if err := s.EnqueueRun(TriggerStartup); err != nil {
			slog.Warn("Failed to enqueue startup run", "error", err)
		}

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				if err := s.EnqueueRun(TriggerSchedule); err != nil {
					slog.Warn("Failed to enqueue scheduled run", "error", err)
				}
			}
		}
	}()

	slog.Info("Scheduler started", "interval", s.interval)
}

// Stop cancels the running task, if any, and waits for the worker to exit.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (s *Scheduler) EnqueueRun(trigger string) error {
	task := NewRunPipelineTask(trigger, s.runner, s.history)
	if err := s.EnqueueTask(task); err != nil {
		return fmt.Errorf("failed to enqueue run: %w", err)
	}

	slog.Debug("Run enqueued", "trigger", trigger, "id", task.GetID())
	return nil
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, s.runTimeout)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "trigger", task.GetTrigger(), "duration", task.GetDuration(), "error", err)
	}
}
