package driven

import (
	"context"

	"github.com/custodia-labs/mediasync/internal/core/domain"
)

// Uploader drains the upload queue of a single sync cycle.
//
// UploadNext performs one sub-step: it uploads the next pending item and
// returns it, or reports Done when nothing is left. Implementations should
// honour ctx for in-flight I/O; the runner stops calling UploadNext once
// the cycle is cancelled.
type Uploader interface {
	UploadNext(ctx context.Context) (domain.UploadStep, error)
}

// UploaderFactory creates the uploader for a new sync cycle.
type UploaderFactory interface {
	NewUploader(ctx context.Context) (Uploader, error)
}

// Transport sends one media item to its destination.
// The transfer protocol is owned entirely by the implementation.
type Transport interface {
	Send(ctx context.Context, folder domain.Folder, item domain.MediaItem) error
}
