package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driven"
	"github.com/custodia-labs/mediasync/internal/core/ports/driving"
)

// Ensure FolderService implements the interface.
var _ driving.FolderService = (*FolderService)(nil)

// FolderService manages synchronised folders.
type FolderService struct {
	folderStore driven.FolderStore
	ledger      driven.SentLedger
}

// NewFolderService creates a new folder service.
func NewFolderService(folderStore driven.FolderStore, ledger driven.SentLedger) *FolderService {
	return &FolderService{
		folderStore: folderStore,
		ledger:      ledger,
	}
}

// Add validates and stores a new folder.
// The path must be an existing directory and must not already be registered.
func (s *FolderService) Add(ctx context.Context, folder domain.Folder) (*domain.Folder, error) {
	folder.Name = strings.TrimSpace(folder.Name)
	if folder.MediaType == "" {
		folder.MediaType = domain.MediaAll
	}
	if err := folder.Validate(); err != nil {
		return nil, err
	}

	path, err := filepath.Abs(folder.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, path)
	}
	folder.Path = path

	existing, err := s.folderStore.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].Path == folder.Path {
			return nil, domain.ErrAlreadyExists
		}
	}

	folder.ID = uuid.New().String()
	folder.CreatedAt = time.Now()
	if err := s.folderStore.Save(ctx, folder); err != nil {
		return nil, fmt.Errorf("save folder: %w", err)
	}
	return &folder, nil
}

// Get retrieves a folder by ID.
func (s *FolderService) Get(ctx context.Context, id string) (*domain.Folder, error) {
	return s.folderStore.Get(ctx, id)
}

// List returns all folders.
func (s *FolderService) List(ctx context.Context) ([]domain.Folder, error) {
	return s.folderStore.List(ctx)
}

// Update changes a folder's name, topic and media type. An empty media
// type keeps the current one. The sent ledger is untouched; since ledger
// keys include the media type, switching type makes files that were sent
// under the old type eligible again.
func (s *FolderService) Update(ctx context.Context, folder domain.Folder) (*domain.Folder, error) {
	current, err := s.folderStore.Get(ctx, folder.ID)
	if err != nil {
		return nil, err
	}

	updated := *current
	updated.Name = strings.TrimSpace(folder.Name)
	updated.Topic = folder.Topic
	if folder.MediaType != "" {
		updated.MediaType = folder.MediaType
	}
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if err := s.folderStore.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("save folder: %w", err)
	}
	return &updated, nil
}

// Remove deletes a folder and forgets its sent files.
func (s *FolderService) Remove(ctx context.Context, id string) error {
	if err := s.folderStore.Delete(ctx, id); err != nil {
		return err
	}
	if s.ledger != nil {
		//nolint:errcheck // The folder is gone; orphaned ledger keys are harmless
		_, _ = s.ledger.ClearPrefix(ctx, sentPrefix(id))
	}
	return nil
}

// SetSyncing enables or disables a folder.
func (s *FolderService) SetSyncing(ctx context.Context, id string, syncing bool) error {
	folder, err := s.folderStore.Get(ctx, id)
	if err != nil {
		return err
	}
	if folder.Syncing == syncing {
		return nil
	}
	folder.Syncing = syncing
	return s.folderStore.Save(ctx, *folder)
}

// ResetSent forgets which files of the folder were uploaded, so the next
// cycle sends them again. Returns the number of forgotten files.
func (s *FolderService) ResetSent(ctx context.Context, id string) (int, error) {
	if _, err := s.folderStore.Get(ctx, id); err != nil {
		return 0, err
	}
	if s.ledger == nil {
		return 0, errors.New("sent ledger not configured")
	}
	return s.ledger.ClearPrefix(ctx, sentPrefix(id))
}

// sentPrefix is the ledger key prefix shared by all files of a folder.
func sentPrefix(folderID string) string {
	return folderID + "_"
}
