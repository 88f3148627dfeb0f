package domain

import (
	"errors"
	"time"
)

// RunState is the process-wide sync lifecycle state.
type RunState int

// Run states. The zero value is Idle.
const (
	// RunIdle means no sync cycle is active.
	RunIdle RunState = iota

	// RunRunning means a sync cycle is executing.
	RunRunning

	// RunStopRequested means a stop was requested for the active cycle
	// and the runner has not yet terminated.
	RunStopRequested
)

// String returns the lower-case name of the state.
func (s RunState) String() string {
	switch s {
	case RunIdle:
		return "idle"
	case RunRunning:
		return "running"
	case RunStopRequested:
		return "stop_requested"
	default:
		return "unknown"
	}
}

// RunHandle identifies one in-flight sync cycle.
// The empty handle never matches an active run.
type RunHandle string

// String returns the handle as a string.
func (h RunHandle) String() string {
	return string(h)
}

// IsZero reports whether the handle is empty.
func (h RunHandle) IsZero() bool {
	return h == ""
}

// Outcome is how a sync cycle terminated.
type Outcome string

// Terminal outcomes of a sync cycle.
const (
	OutcomeCompleted Outcome = "completed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

// RunResult describes a terminated sync cycle.
type RunResult struct {
	// Handle identifies the cycle.
	Handle RunHandle

	// Outcome is how the cycle ended.
	Outcome Outcome

	// Reason holds the failure message when Outcome is OutcomeFailed.
	Reason string

	// Items is the number of items uploaded during the cycle.
	Items int

	// StartedAt is when the cycle started.
	StartedAt time.Time

	// EndedAt is when the cycle terminated.
	EndedAt time.Time
}

// Err maps the outcome to an error. A completed cycle returns nil and a
// cancelled one returns ErrCancelled.
func (r RunResult) Err() error {
	switch r.Outcome {
	case OutcomeCompleted:
		return nil
	case OutcomeCancelled:
		return ErrCancelled
	default:
		if r.Reason == "" {
			return errors.New("sync failed")
		}
		return errors.New(r.Reason)
	}
}

// Duration returns how long the cycle ran.
func (r RunResult) Duration() time.Duration {
	if r.EndedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}
