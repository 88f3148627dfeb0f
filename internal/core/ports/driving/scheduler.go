package driving

import (
	"context"

	"github.com/custodia-labs/mediasync/internal/core/domain"
)

// SyncScheduler serialises sync cycles. At most one cycle is active.
type SyncScheduler interface {
	// RequestRun starts a cycle if none is active and returns its handle.
	// It returns domain.ErrBusy without side effects otherwise.
	// It never waits for the cycle to finish.
	RequestRun(ctx context.Context) (domain.RunHandle, error)

	// RequestStop asks the cycle identified by handle to stop.
	// It returns domain.ErrStaleHandle if handle is not the active run.
	RequestStop(handle domain.RunHandle) error

	// CurrentState returns a snapshot of the run state.
	CurrentState() domain.RunState

	// ActiveHandle returns the active run's handle, or the zero handle.
	ActiveHandle() domain.RunHandle

	// Wait blocks until the run identified by handle has terminated and
	// returns its result. For a handle that already terminated it returns
	// the last known result when it matches, or domain.ErrStaleHandle.
	Wait(ctx context.Context, handle domain.RunHandle) (domain.RunResult, error)

	// LastResult returns the most recent terminal result, if any.
	LastResult() (domain.RunResult, bool)
}

// Trigger is a long-running source of run requests.
type Trigger interface {
	// Start runs the trigger loop. Blocks until ctx is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop halts the trigger loop.
	Stop() error
}
