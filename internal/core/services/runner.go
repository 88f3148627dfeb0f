package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driven"
	"github.com/custodia-labs/mediasync/internal/logger"
)

// Ensure SyncRunner implements Executor.
var _ Executor = (*SyncRunner)(nil)

// SyncRunner executes one sync cycle by draining a fresh uploader.
//
// Cancellation is cooperative: ctx is checked before every uploader
// sub-step and passed into it, but an in-flight UploadNext is never
// abandoned.
type SyncRunner struct {
	factory driven.UploaderFactory
}

// NewSyncRunner creates a runner that obtains uploaders from factory.
func NewSyncRunner(factory driven.UploaderFactory) *SyncRunner {
	return &SyncRunner{factory: factory}
}

// Execute runs the cycle until the uploader is done, ctx is cancelled, or
// the uploader fails. Panics raised by the uploader end the cycle as failed.
func (r *SyncRunner) Execute(ctx context.Context, handle domain.RunHandle) (result domain.RunResult) {
	result = domain.RunResult{
		Handle:    handle,
		StartedAt: time.Now(),
	}

	defer func() {
		if p := recover(); p != nil {
			result.Outcome = domain.OutcomeFailed
			result.Reason = fmt.Sprintf("%v: panic: %v", domain.ErrUploaderFailure, p)
		}
		result.EndedAt = time.Now()
		logger.Debug("run %s finished: %s (%d items)", handle, result.Outcome, result.Items)
	}()

	if ctx.Err() != nil {
		result.Outcome = domain.OutcomeCancelled
		return result
	}

	uploader, err := r.factory.NewUploader(ctx)
	if err != nil {
		return r.terminate(ctx, result, err)
	}
	if closer, ok := uploader.(io.Closer); ok {
		defer closer.Close()
	}

	for {
		if ctx.Err() != nil {
			result.Outcome = domain.OutcomeCancelled
			return result
		}

		step, err := uploader.UploadNext(ctx)
		if err != nil {
			return r.terminate(ctx, result, err)
		}
		if step.Done {
			result.Outcome = domain.OutcomeCompleted
			return result
		}
		if step.Item != nil {
			result.Items++
			logger.Debug("run %s uploaded %s", handle, step.Item.Name)
		}
	}
}

// terminate classifies an uploader error. Errors observed after
// cancellation count as cancellation, not failure.
func (r *SyncRunner) terminate(ctx context.Context, result domain.RunResult, err error) domain.RunResult {
	if ctx.Err() != nil {
		result.Outcome = domain.OutcomeCancelled
		return result
	}
	if !errors.Is(err, domain.ErrUploaderFailure) {
		err = fmt.Errorf("%w: %w", domain.ErrUploaderFailure, err)
	}
	result.Outcome = domain.OutcomeFailed
	result.Reason = err.Error()
	return result
}
