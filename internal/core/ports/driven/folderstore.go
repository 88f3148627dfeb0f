package driven

import (
	"context"

	"github.com/custodia-labs/mediasync/internal/core/domain"
)

// FolderStore persists folder configurations.
type FolderStore interface {
	// Save stores or updates a folder.
	Save(ctx context.Context, folder domain.Folder) error

	// Get retrieves a folder by ID. Returns domain.ErrNotFound if missing.
	Get(ctx context.Context, id string) (*domain.Folder, error)

	// List returns all folders ordered by name.
	List(ctx context.Context) ([]domain.Folder, error)

	// Delete removes a folder. Returns domain.ErrNotFound if missing.
	Delete(ctx context.Context, id string) error
}

// SentLedger records which files have been uploaded.
type SentLedger interface {
	// IsSent reports whether the key was marked sent.
	IsSent(ctx context.Context, key string) (bool, error)

	// MarkSent records the key as sent.
	MarkSent(ctx context.Context, key string) error

	// ClearPrefix removes all keys starting with prefix and returns how many were removed.
	ClearPrefix(ctx context.Context, prefix string) (int, error)
}
