package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API server to trigger pipeline runs.
// Example usage:
//
//	scheduler := NewScheduler(pipeline, history, interval)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewRunPipelineTask(TriggerAPI, pipeline, history))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueRun(trigger string) error
}
