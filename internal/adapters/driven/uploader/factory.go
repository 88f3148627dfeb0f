package uploader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driven"
	"github.com/custodia-labs/mediasync/internal/logger"
)

// Ensure Factory implements the interface.
var _ driven.UploaderFactory = (*Factory)(nil)

// Options configures a Factory.
type Options struct {
	// UploadDelay is the minimum gap between two uploads.
	UploadDelay time.Duration

	// MediaType further restricts what every folder uploads.
	// Empty or MediaAll leaves each folder's own media type in charge.
	MediaType domain.MediaType
}

// Factory scans folders at the start of each cycle and creates its uploader.
type Factory struct {
	folders   driven.FolderStore
	ledger    driven.SentLedger
	transport driven.Transport
	pacer     *Pacer
	mediaType domain.MediaType
}

// NewFactory creates an uploader factory.
// The pacer is shared by all cycles so back-to-back cycles stay spaced.
func NewFactory(folders driven.FolderStore, ledger driven.SentLedger, transport driven.Transport, opts Options) *Factory {
	if opts.MediaType == "" {
		opts.MediaType = domain.MediaAll
	}
	return &Factory{
		folders:   folders,
		ledger:    ledger,
		transport: transport,
		pacer:     NewPacer(opts.UploadDelay),
		mediaType: opts.MediaType,
	}
}

// NewUploader snapshots all syncing folders and queues their unsent media.
// Folders that no longer exist are skipped.
func (f *Factory) NewUploader(ctx context.Context) (driven.Uploader, error) {
	folders, err := f.folders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	u := &FolderUploader{
		ledger:    f.ledger,
		transport: f.transport,
		pacer:     f.pacer,
	}
	for _, folder := range folders {
		if !folder.Syncing {
			continue
		}
		items, err := f.scan(ctx, folder)
		if err != nil {
			logger.Warn("skipping folder %s: %v", folder.Name, err)
			continue
		}
		for _, item := range items {
			u.queue = append(u.queue, queued{folder: folder, item: item})
		}
	}

	logger.Debug("sync cycle queued %d items", len(u.queue))
	return u, nil
}

// scan lists the unsent media files directly inside folder, sorted by name.
func (f *Factory) scan(ctx context.Context, folder domain.Folder) ([]domain.MediaItem, error) {
	entries, err := os.ReadDir(folder.Path)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var items []domain.MediaItem
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if !entry.Type().IsRegular() || strings.HasPrefix(name, ".") {
			continue
		}
		if !folder.MediaType.Matches(name) || !f.mediaType.Matches(name) {
			continue
		}

		item := domain.MediaItem{
			FolderID:  folder.ID,
			MediaType: folder.MediaType,
			Path:      filepath.Join(folder.Path, name),
			Name:      name,
		}
		sent, err := f.ledger.IsSent(ctx, item.SentKey())
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", name, err)
		}
		if sent {
			continue
		}

		if info, err := entry.Info(); err == nil {
			item.Size = info.Size()
			item.ModTime = info.ModTime()
		}
		items = append(items, item)
	}
	return items, nil
}
