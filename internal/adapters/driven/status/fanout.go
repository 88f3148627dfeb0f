package status

import (
	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driven"
)

// Ensure Fanout implements the interface.
var _ driven.StatusSink = Fanout(nil)

// Fanout publishes every event to each sink in order.
type Fanout []driven.StatusSink

// Publish forwards event to all non-nil sinks.
func (f Fanout) Publish(event domain.Event) {
	for _, sink := range f {
		if sink != nil {
			sink.Publish(event)
		}
	}
}
