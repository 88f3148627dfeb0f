package domain

import "time"

// ScheduledTask represents a recurring background task.
type ScheduledTask struct {
	// ID is the unique identifier for the task.
	ID string

	// Name is a human-readable name for the task.
	Name string

	// Interval defines how often the task should run.
	Interval time.Duration

	// LastRun is when the task last ran.
	LastRun time.Time

	// NextRun is when the task should run next.
	NextRun time.Time

	// LastError contains the last error message, if any.
	LastError string

	// LastSuccess is when the task last completed successfully.
	LastSuccess time.Time

	// Enabled indicates whether the task is active.
	Enabled bool
}

// IsDue reports whether the task should run at now.
func (t *ScheduledTask) IsDue(now time.Time) bool {
	if !t.Enabled {
		return false
	}
	return t.NextRun.IsZero() || !t.NextRun.After(now)
}

// TaskResult represents the outcome of a task execution.
type TaskResult struct {
	// TaskID identifies which task was run.
	TaskID string

	// RunHandle identifies the sync cycle that produced the result.
	RunHandle RunHandle

	// StartedAt is when the task started.
	StartedAt time.Time

	// EndedAt is when the task completed.
	EndedAt time.Time

	// Outcome is how the cycle ended.
	Outcome Outcome

	// Success indicates whether the task completed without error.
	Success bool

	// Error contains the error message if Success is false.
	Error string

	// ItemsProcessed is a count of items uploaded.
	ItemsProcessed int
}

// TaskResultFromRun converts a finished run into a history record.
func TaskResultFromRun(taskID string, r RunResult) TaskResult {
	return TaskResult{
		TaskID:         taskID,
		RunHandle:      r.Handle,
		StartedAt:      r.StartedAt,
		EndedAt:        r.EndedAt,
		Outcome:        r.Outcome,
		Success:        r.Outcome == OutcomeCompleted,
		Error:          r.Reason,
		ItemsProcessed: r.Items,
	}
}

// TaskConfig holds configuration for a single task.
type TaskConfig struct {
	// Enabled indicates whether this task should run.
	Enabled bool

	// Interval defines how often the task should run.
	Interval time.Duration

	// MaxRunDuration stops a cycle that runs longer than this. Zero disables it.
	MaxRunDuration time.Duration
}

// TaskIDMediaSync is the ID of the periodic media sync task.
const TaskIDMediaSync = "media-sync"

// DefaultTaskConfig returns the default periodic media sync configuration.
func DefaultTaskConfig() TaskConfig {
	return TaskConfig{
		Enabled:  true,
		Interval: DefaultSyncInterval,
	}
}
