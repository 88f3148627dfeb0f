package services

import (
	"context"

	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driven"
	"github.com/custodia-labs/mediasync/internal/core/ports/driving"
)

// Ensure StatusService implements the interface.
var _ driving.StatusService = (*StatusService)(nil)

// StatusService combines live scheduler state with persisted task history.
type StatusService struct {
	scheduler driving.SyncScheduler
	store     driven.SchedulerStore
}

// NewStatusService creates a new status service. store may be nil.
func NewStatusService(scheduler driving.SyncScheduler, store driven.SchedulerStore) *StatusService {
	return &StatusService{
		scheduler: scheduler,
		store:     store,
	}
}

// Status returns the current state, the periodic task and recent history.
func (s *StatusService) Status(ctx context.Context, historyLimit int) (*driving.SyncStatus, error) {
	status := &driving.SyncStatus{
		State:  s.scheduler.CurrentState(),
		Handle: s.scheduler.ActiveHandle(),
	}
	if s.store == nil {
		return status, nil
	}

	task, err := s.store.GetTask(ctx, domain.TaskIDMediaSync)
	if err != nil {
		return nil, err
	}
	status.Task = task

	if historyLimit > 0 {
		history, err := s.store.GetTaskHistory(ctx, domain.TaskIDMediaSync, historyLimit)
		if err != nil {
			return nil, err
		}
		status.History = history
	}
	return status, nil
}
