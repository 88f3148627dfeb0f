package uploader

import (
	"context"
	"fmt"

	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driven"
	"github.com/custodia-labs/mediasync/internal/logger"
)

// Ensure FolderUploader implements the interface.
var _ driven.Uploader = (*FolderUploader)(nil)

// queued pairs an item with the folder it was found in.
type queued struct {
	folder domain.Folder
	item   domain.MediaItem
}

// FolderUploader drains one cycle's queue. It is not safe for concurrent use;
// the runner calls UploadNext sequentially.
type FolderUploader struct {
	queue     []queued
	next      int
	ledger    driven.SentLedger
	transport driven.Transport
	pacer     *Pacer
}

// Pending returns how many items have not been uploaded yet.
func (u *FolderUploader) Pending() int {
	return len(u.queue) - u.next
}

// UploadNext uploads the next queued item, or reports Done when the queue is empty.
func (u *FolderUploader) UploadNext(ctx context.Context) (domain.UploadStep, error) {
	if u.next >= len(u.queue) {
		return domain.UploadStep{Done: true}, nil
	}
	q := u.queue[u.next]

	if err := u.pacer.Wait(ctx); err != nil {
		return domain.UploadStep{}, err
	}

	if err := u.transport.Send(ctx, q.folder, q.item); err != nil {
		if d, ok := retryAfter(err); ok {
			u.pacer.Backoff(d)
		}
		return domain.UploadStep{}, fmt.Errorf("%w: send %s: %w", domain.ErrUploaderFailure, q.item.Name, err)
	}

	if err := u.ledger.MarkSent(ctx, q.item.SentKey()); err != nil {
		// The transfer happened; a retry would duplicate it. Fail the cycle so
		// the ledger problem is visible.
		return domain.UploadStep{}, fmt.Errorf("%w: record %s: %w", domain.ErrUploaderFailure, q.item.Name, err)
	}

	u.next++
	logger.Debug("uploaded %s from %s (%d left)", q.item.Name, q.folder.Name, u.Pending())
	return domain.UploadStep{Item: &q.item}, nil
}
