package domain

import "time"

// EventKind classifies a status event.
type EventKind string

// Status event kinds emitted by the scheduler.
const (
	EventStarted       EventKind = "started"
	EventStopRequested EventKind = "stop_requested"
	EventCompleted     EventKind = "completed"
	EventCancelled     EventKind = "cancelled"
	EventFailed        EventKind = "failed"
)

// IsTerminal reports whether the kind marks the end of a cycle.
func (k EventKind) IsTerminal() bool {
	return k == EventCompleted || k == EventCancelled || k == EventFailed
}

// EventKindForOutcome maps a terminal outcome to its event kind.
func EventKindForOutcome(o Outcome) EventKind {
	switch o {
	case OutcomeCompleted:
		return EventCompleted
	case OutcomeCancelled:
		return EventCancelled
	default:
		return EventFailed
	}
}

// Event is a structured status notification.
// Sinks decide how to present it.
type Event struct {
	Kind   EventKind
	Handle RunHandle
	At     time.Time

	// Reason is set for failed cycles.
	Reason string

	// Items is the number of uploaded items, set on terminal events.
	Items int

	// StartedAt is set on terminal events.
	StartedAt time.Time
}
