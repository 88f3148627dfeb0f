package driving

import (
	"context"

	"github.com/custodia-labs/mediasync/internal/core/domain"
)

// FolderService manages synchronised folders.
type FolderService interface {
	// Add validates and stores a new folder, assigning its ID.
	Add(ctx context.Context, folder domain.Folder) (*domain.Folder, error)

	// Get retrieves a folder by ID.
	Get(ctx context.Context, id string) (*domain.Folder, error)

	// List returns all folders.
	List(ctx context.Context) ([]domain.Folder, error)

	// Update changes the name, topic and media type of an existing folder.
	// Path, syncing state and creation time are kept.
	Update(ctx context.Context, folder domain.Folder) (*domain.Folder, error)

	// Remove deletes a folder and its sent history.
	Remove(ctx context.Context, id string) error

	// SetSyncing enables or disables a folder.
	SetSyncing(ctx context.Context, id string, syncing bool) error

	// ResetSent forgets which files of the folder were uploaded.
	ResetSent(ctx context.Context, id string) (int, error)
}
