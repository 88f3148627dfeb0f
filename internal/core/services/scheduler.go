package services

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driven"
	"github.com/custodia-labs/mediasync/internal/core/ports/driving"
	"github.com/custodia-labs/mediasync/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.SyncScheduler = (*Scheduler)(nil)

// Executor runs one sync cycle to a terminal result.
// It must return once ctx is cancelled and the current sub-step ends.
type Executor interface {
	Execute(ctx context.Context, handle domain.RunHandle) domain.RunResult
}

// activeRun is the bookkeeping for the run currently holding the state.
type activeRun struct {
	handle    domain.RunHandle
	startedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}

	// result is written once before done is closed.
	result domain.RunResult
}

// Scheduler owns the process-wide RunState and serialises sync cycles.
// All state transitions happen under mu.
type Scheduler struct {
	executor Executor
	events   *eventDispatcher

	mu     sync.Mutex
	state  domain.RunState
	active *activeRun
	last   *domain.RunResult
	closed bool
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that runs cycles with executor and
// reports to sink. A nil sink discards events.
func NewScheduler(executor Executor, sink driven.StatusSink) *Scheduler {
	return &Scheduler{
		executor: executor,
		events:   newEventDispatcher(sink),
	}
}

// RequestRun starts a new cycle when the scheduler is idle.
// The cycle runs on its own goroutine; RequestRun does not wait for it.
// Values from ctx are kept but its cancellation is not inherited, so a
// short-lived request context does not abort the cycle.
func (s *Scheduler) RequestRun(ctx context.Context) (domain.RunHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", domain.ErrClosed
	}
	if s.state != domain.RunIdle {
		return "", domain.ErrBusy
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	run := &activeRun{
		handle:    domain.RunHandle(ulid.Make().String()),
		startedAt: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	s.state = domain.RunRunning
	s.active = run

	s.events.enqueue(domain.Event{
		Kind:   domain.EventStarted,
		Handle: run.handle,
		At:     run.startedAt,
	})

	s.wg.Add(1)
	go s.execute(runCtx, run)

	return run.handle, nil
}

// RequestStop cancels the active cycle if handle identifies it.
// Repeated stops for the same active run succeed without further effect.
func (s *Scheduler) RequestStop(handle domain.RunHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil || handle.IsZero() || s.active.handle != handle {
		return domain.ErrStaleHandle
	}
	s.requestStopLocked()
	return nil
}

// requestStopLocked moves Running to StopRequested and signals the runner.
// Caller must hold mu and have checked that a run is active.
func (s *Scheduler) requestStopLocked() {
	if s.state == domain.RunRunning {
		s.state = domain.RunStopRequested
		s.events.enqueue(domain.Event{
			Kind:   domain.EventStopRequested,
			Handle: s.active.handle,
			At:     time.Now(),
		})
	}
	s.active.cancel()
}

// CurrentState returns a snapshot of the run state.
func (s *Scheduler) CurrentState() domain.RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ActiveHandle returns the handle of the active run, or the zero handle.
func (s *Scheduler) ActiveHandle() domain.RunHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ""
	}
	return s.active.handle
}

// LastResult returns the most recent terminal result.
func (s *Scheduler) LastResult() (domain.RunResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return domain.RunResult{}, false
	}
	return *s.last, true
}

// Wait blocks until the run identified by handle terminates.
func (s *Scheduler) Wait(ctx context.Context, handle domain.RunHandle) (domain.RunResult, error) {
	s.mu.Lock()
	if s.active != nil && s.active.handle == handle {
		run := s.active
		s.mu.Unlock()

		select {
		case <-run.done:
			return run.result, nil
		case <-ctx.Done():
			return domain.RunResult{}, ctx.Err()
		}
	}
	defer s.mu.Unlock()

	if s.last != nil && !handle.IsZero() && s.last.Handle == handle {
		return *s.last, nil
	}
	return domain.RunResult{}, domain.ErrStaleHandle
}

// Shutdown stops the active cycle, waits for it to release the state and
// flushes pending events. Later RequestRun calls return domain.ErrClosed.
// If ctx expires first, the event dispatcher still drains and exits.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	if s.active != nil {
		s.requestStopLocked()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		// Deliver what is queued. The late terminal event is dropped.
		s.events.stop()
		return ctx.Err()
	}

	s.events.close()
	return nil
}

// execute runs one cycle and releases the state exactly once.
func (s *Scheduler) execute(ctx context.Context, run *activeRun) {
	defer s.wg.Done()

	result := s.executor.Execute(ctx, run.handle)
	s.release(run, result)
}

// release returns the state to Idle and publishes the terminal event.
func (s *Scheduler) release(run *activeRun, result domain.RunResult) {
	s.mu.Lock()
	if s.active != run {
		s.mu.Unlock()
		logger.Warn("scheduler: ignoring release for inactive run %s", run.handle)
		return
	}

	result.Handle = run.handle
	if result.StartedAt.IsZero() {
		result.StartedAt = run.startedAt
	}
	if result.EndedAt.IsZero() {
		result.EndedAt = time.Now()
	}

	s.active = nil
	s.state = domain.RunIdle
	s.last = &result
	run.result = result
	close(run.done)

	s.events.enqueue(domain.Event{
		Kind:      domain.EventKindForOutcome(result.Outcome),
		Handle:    result.Handle,
		At:        result.EndedAt,
		Reason:    result.Reason,
		Items:     result.Items,
		StartedAt: result.StartedAt,
	})
	s.mu.Unlock()

	run.cancel()
}
