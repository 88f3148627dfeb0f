package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driven"
)

// Ensure SchedulerStore implements the interface.
var _ driven.SchedulerStore = (*SchedulerStore)(nil)

// SchedulerStore is an in-memory implementation of driven.SchedulerStore.
// State is lost on restart, so the periodic task is due again at startup.
type SchedulerStore struct {
	mu      sync.RWMutex
	tasks   map[string]domain.ScheduledTask
	results []domain.TaskResult
}

// NewSchedulerStore creates a new in-memory scheduler store.
func NewSchedulerStore() *SchedulerStore {
	return &SchedulerStore{
		tasks: make(map[string]domain.ScheduledTask),
	}
}

// GetTask retrieves a scheduled task by ID, or nil if it does not exist.
func (s *SchedulerStore) GetTask(_ context.Context, taskID string) (*domain.ScheduledTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return nil, nil
	}
	return &task, nil
}

// ListTasks returns all scheduled tasks ordered by ID.
func (s *SchedulerStore) ListTasks(_ context.Context) ([]domain.ScheduledTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := make([]domain.ScheduledTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// SaveTask creates or updates a task.
func (s *SchedulerStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	if task == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = *task
	return nil
}

// DeleteTask removes a task.
func (s *SchedulerStore) DeleteTask(_ context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, taskID)
	return nil
}

// RecordResult appends a task execution result.
// Recording the same run handle twice keeps the first result.
func (s *SchedulerStore) RecordResult(_ context.Context, result *domain.TaskResult) error {
	if result == nil || result.TaskID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if result.RunHandle != "" {
		for i := range s.results {
			if s.results[i].RunHandle == result.RunHandle {
				return nil
			}
		}
	}
	s.results = append(s.results, *result)
	return nil
}

// GetTaskHistory returns recent results for a task, most recent first.
func (s *SchedulerStore) GetTaskHistory(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.historyLocked(taskID)
	if limit >= 0 && len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

// PruneHistory keeps the most recent keep results per task.
// A negative keep leaves the history untouched.
func (s *SchedulerStore) PruneHistory(_ context.Context, keep int) error {
	if keep < 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	taskIDs := make(map[string]struct{})
	for _, r := range s.results {
		taskIDs[r.TaskID] = struct{}{}
	}

	var kept []domain.TaskResult
	for id := range taskIDs {
		history := s.historyLocked(id)
		if len(history) > keep {
			history = history[:keep]
		}
		kept = append(kept, history...)
	}
	s.results = kept
	return nil
}

// historyLocked returns a copy of a task's results, most recent first.
// Ties on start time keep insertion order reversed. Caller must hold mu.
func (s *SchedulerStore) historyLocked(taskID string) []domain.TaskResult {
	var history []domain.TaskResult
	for i := len(s.results) - 1; i >= 0; i-- {
		if s.results[i].TaskID == taskID {
			history = append(history, s.results[i])
		}
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].StartedAt.After(history[j].StartedAt)
	})
	return history
}
