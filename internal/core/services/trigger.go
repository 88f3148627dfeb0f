package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driven"
	"github.com/custodia-labs/mediasync/internal/core/ports/driving"
	"github.com/custodia-labs/mediasync/internal/logger"
)

// Ensure PeriodicTrigger implements the interface.
var _ driving.Trigger = (*PeriodicTrigger)(nil)

// defaultCheckInterval is how often the trigger looks for a due task.
const defaultCheckInterval = time.Minute

// PeriodicTrigger requests a sync cycle whenever the media sync task is due.
// It owns the retry policy: a busy scheduler or an unmet constraint leaves
// the task due, so the next check tries again.
type PeriodicTrigger struct {
	config      domain.TaskConfig
	store       driven.SchedulerStore
	scheduler   driving.SyncScheduler
	constraints []driven.Constraint

	checkInterval time.Duration

	mu      sync.Mutex
	running bool
	stopped bool
	stopCh  chan struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewPeriodicTrigger creates a trigger for the media sync task.
func NewPeriodicTrigger(
	config domain.TaskConfig,
	store driven.SchedulerStore,
	scheduler driving.SyncScheduler,
	constraints ...driven.Constraint,
) *PeriodicTrigger {
	return &PeriodicTrigger{
		config:        config,
		store:         store,
		scheduler:     scheduler,
		constraints:   constraints,
		checkInterval: defaultCheckInterval,
	}
}

// Start begins the trigger loop. This method blocks until Stop is called
// or ctx is cancelled.
func (t *PeriodicTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return nil // Already running
	}
	// Stop cancels loopCtx so run watchers return without waiting for
	// the active cycle to end.
	loopCtx, cancel := context.WithCancel(ctx)
	t.running = true
	t.stopped = false
	t.stopCh = make(chan struct{})
	t.cancel = cancel
	stopCh := t.stopCh
	t.mu.Unlock()
	defer cancel()

	if err := t.ensureTask(loopCtx); err != nil {
		logger.Warn("trigger: failed to initialise task: %v", err)
	}

	return t.run(loopCtx, stopCh)
}

// Stop halts the loop and waits for in-flight run watchers to return.
// An active cycle is left to the scheduler.
func (t *PeriodicTrigger) Stop() error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return nil
	}
	t.running = false
	t.stopped = true
	close(t.stopCh)
	t.cancel()
	t.mu.Unlock()

	t.wg.Wait()
	return nil
}

// ensureTask creates or updates the task in the store.
func (t *PeriodicTrigger) ensureTask(ctx context.Context) error {
	task, err := t.store.GetTask(ctx, domain.TaskIDMediaSync)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       domain.TaskIDMediaSync,
			Name:     "Media Sync",
			Interval: t.config.Interval,
			Enabled:  t.config.Enabled,
			NextRun:  time.Now(),
		}
	} else {
		if task.Interval != t.config.Interval {
			task.Interval = t.config.Interval
			// Recalculate next run from the last run so a shorter interval takes effect
			if !task.LastRun.IsZero() {
				task.NextRun = task.LastRun.Add(t.config.Interval)
			}
		}
		task.Enabled = t.config.Enabled
	}

	return t.store.SaveTask(ctx, task)
}

// run is the main trigger loop.
func (t *PeriodicTrigger) run(ctx context.Context, stopCh <-chan struct{}) error {
	t.checkAndTrigger(ctx)

	ticker := time.NewTicker(t.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			select {
			case <-stopCh:
				return nil
			default:
				return ctx.Err()
			}
		case <-stopCh:
			return nil
		case <-ticker.C:
			t.checkAndTrigger(ctx)
		}
	}
}

// checkAndTrigger requests a run if the task is due and conditions allow it.
func (t *PeriodicTrigger) checkAndTrigger(ctx context.Context) {
	task, err := t.store.GetTask(ctx, domain.TaskIDMediaSync)
	if err != nil {
		logger.Warn("trigger: failed to load task: %v", err)
		return
	}
	if task == nil {
		return
	}

	now := time.Now()
	if !task.IsDue(now) {
		return
	}

	if err := t.checkConstraints(ctx); err != nil {
		logger.Info("trigger: sync deferred: %v", err)
		return
	}

	handle, err := t.scheduler.RequestRun(ctx)
	if errors.Is(err, domain.ErrBusy) {
		logger.Debug("trigger: sync already running, retrying on next check")
		return
	}
	if err != nil {
		logger.Warn("trigger: request run: %v", err)
		return
	}

	task.LastRun = now
	task.NextRun = now.Add(task.Interval)
	if err := t.store.SaveTask(ctx, task); err != nil {
		logger.Warn("trigger: failed to save task %s: %v", task.ID, err)
	}

	// wg.Add must not race with the Wait in Stop.
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.awaitRun(ctx, handle)
	}()
}

// checkConstraints returns the first unmet constraint.
func (t *PeriodicTrigger) checkConstraints(ctx context.Context) error {
	return driven.CheckConstraints(ctx, t.constraints)
}

// awaitRun waits for a triggered run, enforces MaxRunDuration and records
// the outcome on the task.
func (t *PeriodicTrigger) awaitRun(ctx context.Context, handle domain.RunHandle) {
	waitCtx := ctx
	if t.config.MaxRunDuration > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, t.config.MaxRunDuration)
		defer cancel()
	}

	result, err := t.scheduler.Wait(waitCtx, handle)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		logger.Warn("trigger: run %s exceeded %s, stopping", handle, t.config.MaxRunDuration)
		if stopErr := t.scheduler.RequestStop(handle); stopErr != nil {
			logger.Debug("trigger: stop %s: %v", handle, stopErr)
		}
		result, err = t.scheduler.Wait(ctx, handle)
	}
	if err != nil {
		return
	}

	task, err := t.store.GetTask(ctx, domain.TaskIDMediaSync)
	if err != nil || task == nil {
		return
	}
	if result.Outcome == domain.OutcomeCompleted {
		task.LastError = ""
		task.LastSuccess = result.EndedAt
	} else {
		task.LastError = string(result.Outcome)
		if result.Reason != "" {
			task.LastError = result.Reason
		}
	}
	if err := t.store.SaveTask(ctx, task); err != nil {
		logger.Warn("trigger: failed to save task %s: %v", task.ID, err)
	}
}
