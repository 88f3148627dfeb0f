package services

import (
	"sync"

	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driven"
)

// eventDispatcher delivers events to a sink on a single goroutine, in the
// order they were enqueued. enqueue never blocks.
type eventDispatcher struct {
	sink driven.StatusSink

	mu     sync.Mutex
	queue  []domain.Event
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

func newEventDispatcher(sink driven.StatusSink) *eventDispatcher {
	d := &eventDispatcher{
		sink: sink,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *eventDispatcher) enqueue(event domain.Event) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.queue = append(d.queue, event)
	d.mu.Unlock()
	d.signal()
}

func (d *eventDispatcher) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// close delivers everything already queued and stops the loop.
func (d *eventDispatcher) close() {
	d.stop()
	<-d.done
}

// stop refuses new events and lets the loop exit after draining the queue.
// It does not wait for delivery.
func (d *eventDispatcher) stop() {
	d.mu.Lock()
	already := d.closed
	d.closed = true
	d.mu.Unlock()
	if !already {
		d.signal()
	}
}

func (d *eventDispatcher) loop() {
	defer close(d.done)
	for {
		d.mu.Lock()
		batch := d.queue
		d.queue = nil
		closed := d.closed
		d.mu.Unlock()

		for _, event := range batch {
			if d.sink != nil {
				d.sink.Publish(event)
			}
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-d.wake
	}
}
