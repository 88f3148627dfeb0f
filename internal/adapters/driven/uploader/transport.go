package uploader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driven"
	"github.com/custodia-labs/mediasync/internal/logger"
)

// RateLimitedError is returned by a transport when the destination asks
// the client to slow down.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// retryAfter extracts a back-off hint from err.
func retryAfter(err error) (time.Duration, bool) {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl.RetryAfter, true
	}
	return 0, false
}

// Ensure LogTransport implements the interface.
var _ driven.Transport = (*LogTransport)(nil)

// LogTransport is a dry-run transport that only logs each item.
type LogTransport struct{}

// NewLogTransport creates a dry-run transport.
func NewLogTransport() *LogTransport {
	return &LogTransport{}
}

// Send logs the item and reports success.
func (t *LogTransport) Send(ctx context.Context, folder domain.Folder, item domain.MediaItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.L().Info("dry run upload",
		zap.String("folder", folder.Name),
		zap.String("topic", folder.Topic),
		zap.String("file", item.Name),
		zap.String("media_type", item.MediaType.String()),
		zap.Int64("size", item.Size),
	)
	return nil
}
