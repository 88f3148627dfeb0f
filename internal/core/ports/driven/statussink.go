package driven

import "github.com/custodia-labs/mediasync/internal/core/domain"

// StatusSink receives structured run events.
// Publish must not block for long; it is called from the scheduler and runner.
type StatusSink interface {
	Publish(event domain.Event)
}

// StatusSinkFunc adapts a function to StatusSink.
type StatusSinkFunc func(event domain.Event)

// Publish calls f(event).
func (f StatusSinkFunc) Publish(event domain.Event) {
	f(event)
}
