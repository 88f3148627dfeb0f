package status

import (
	"context"
	"time"

	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driven"
	"github.com/custodia-labs/mediasync/internal/logger"
)

// DefaultHistoryKeep is how many results are retained per task.
const DefaultHistoryKeep = 100

// historyTimeout bounds each store write.
const historyTimeout = 5 * time.Second

// Ensure HistorySink implements the interface.
var _ driven.StatusSink = (*HistorySink)(nil)

// HistorySink persists a TaskResult for every terminal event.
type HistorySink struct {
	store  driven.SchedulerStore
	taskID string
	keep   int
}

// NewHistorySink creates a history sink for taskID that keeps the most
// recent keep results. A non-positive keep uses DefaultHistoryKeep.
func NewHistorySink(store driven.SchedulerStore, taskID string, keep int) *HistorySink {
	if keep <= 0 {
		keep = DefaultHistoryKeep
	}
	return &HistorySink{store: store, taskID: taskID, keep: keep}
}

// Publish records terminal events. Store errors are logged, not returned.
func (s *HistorySink) Publish(event domain.Event) {
	if !event.Kind.IsTerminal() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()

	result := domain.TaskResultFromRun(s.taskID, domain.RunResult{
		Handle:    event.Handle,
		Outcome:   domain.Outcome(event.Kind),
		Reason:    event.Reason,
		Items:     event.Items,
		StartedAt: event.StartedAt,
		EndedAt:   event.At,
	})
	if err := s.store.RecordResult(ctx, &result); err != nil {
		logger.Warn("history: record %s: %v", event.Handle, err)
		return
	}
	if err := s.store.PruneHistory(ctx, s.keep); err != nil {
		logger.Warn("history: prune: %v", err)
	}
}
