package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driven"
)

// Ensure FolderStore implements the interface.
var _ driven.FolderStore = (*FolderStore)(nil)

// FolderStore is an in-memory implementation of driven.FolderStore.
type FolderStore struct {
	mu      sync.RWMutex
	folders map[string]domain.Folder
}

// NewFolderStore creates a new in-memory folder store.
func NewFolderStore() *FolderStore {
	return &FolderStore{
		folders: make(map[string]domain.Folder),
	}
}

// Save stores or updates a folder.
func (s *FolderStore) Save(_ context.Context, folder domain.Folder) error {
	if folder.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, f := range s.folders {
		if id != folder.ID && f.Path == folder.Path {
			return domain.ErrAlreadyExists
		}
	}
	s.folders[folder.ID] = folder
	return nil
}

// Get retrieves a folder by ID.
func (s *FolderStore) Get(_ context.Context, id string) (*domain.Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	folder, ok := s.folders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &folder, nil
}

// Delete removes a folder.
func (s *FolderStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.folders[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.folders, id)
	return nil
}

// List returns all folders ordered by name.
func (s *FolderStore) List(_ context.Context) ([]domain.Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Folder, 0, len(s.folders))
	for _, folder := range s.folders {
		result = append(result, folder)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Ensure SentLedger implements the interface.
var _ driven.SentLedger = (*SentLedger)(nil)

// SentLedger is an in-memory implementation of driven.SentLedger.
type SentLedger struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

// NewSentLedger creates a new in-memory sent ledger.
func NewSentLedger() *SentLedger {
	return &SentLedger{
		keys: make(map[string]struct{}),
	}
}

// IsSent reports whether the key was marked sent.
func (l *SentLedger) IsSent(_ context.Context, key string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.keys[key]
	return ok, nil
}

// MarkSent records the key as sent.
func (l *SentLedger) MarkSent(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys[key] = struct{}{}
	return nil
}

// ClearPrefix removes all keys starting with prefix.
func (l *SentLedger) ClearPrefix(_ context.Context, prefix string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key := range l.keys {
		if strings.HasPrefix(key, prefix) {
			delete(l.keys, key)
			removed++
		}
	}
	return removed, nil
}
