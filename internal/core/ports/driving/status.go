package driving

import (
	"context"

	"github.com/custodia-labs/mediasync/internal/core/domain"
)

// SyncStatus is a point-in-time view of the sync system.
type SyncStatus struct {
	// State is the current run state.
	State domain.RunState

	// Handle is the active run, if any.
	Handle domain.RunHandle

	// Task is the periodic task record, nil if never scheduled.
	Task *domain.ScheduledTask

	// History holds recent results, most recent first.
	History []domain.TaskResult
}

// StatusService reports sync status and history.
type StatusService interface {
	Status(ctx context.Context, historyLimit int) (*SyncStatus, error)
}
