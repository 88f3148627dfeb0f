package mcp

import (
	"context"

	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driving"
)

// Ensure mocks implement the interfaces.
var (
	_ driving.SyncScheduler = (*mockScheduler)(nil)
	_ driving.StatusService = (*mockStatusService)(nil)
	_ driving.FolderService = (*mockFolderService)(nil)
)

// mockScheduler is a mock implementation of driving.SyncScheduler.
type mockScheduler struct {
	state   domain.RunState
	active  domain.RunHandle
	runErr  error
	next    domain.RunHandle
	stopped []domain.RunHandle
	result  *domain.RunResult
	waitErr error
}

func (m *mockScheduler) RequestRun(_ context.Context) (domain.RunHandle, error) {
	if m.runErr != nil {
		return "", m.runErr
	}
	m.active = m.next
	m.state = domain.RunRunning
	return m.next, nil
}

func (m *mockScheduler) RequestStop(handle domain.RunHandle) error {
	if handle.IsZero() || handle != m.active {
		return domain.ErrStaleHandle
	}
	m.stopped = append(m.stopped, handle)
	m.state = domain.RunStopRequested
	return nil
}

func (m *mockScheduler) CurrentState() domain.RunState {
	return m.state
}

func (m *mockScheduler) ActiveHandle() domain.RunHandle {
	return m.active
}

func (m *mockScheduler) Wait(_ context.Context, _ domain.RunHandle) (domain.RunResult, error) {
	if m.waitErr != nil {
		return domain.RunResult{}, m.waitErr
	}
	m.state = domain.RunIdle
	m.active = ""
	return *m.result, nil
}

func (m *mockScheduler) LastResult() (domain.RunResult, bool) {
	if m.result == nil {
		return domain.RunResult{}, false
	}
	return *m.result, true
}

// mockStatusService is a mock implementation of driving.StatusService.
type mockStatusService struct {
	status    *driving.SyncStatus
	err       error
	lastLimit int
}

func (m *mockStatusService) Status(_ context.Context, limit int) (*driving.SyncStatus, error) {
	m.lastLimit = limit
	return m.status, m.err
}

// mockFolderService is a mock implementation of driving.FolderService.
type mockFolderService struct {
	folders []domain.Folder
	err     error
}

func (m *mockFolderService) Add(_ context.Context, f domain.Folder) (*domain.Folder, error) {
	return &f, m.err
}

func (m *mockFolderService) Get(_ context.Context, id string) (*domain.Folder, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.folders {
		if m.folders[i].ID == id {
			return &m.folders[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockFolderService) List(_ context.Context) ([]domain.Folder, error) {
	return m.folders, m.err
}

func (m *mockFolderService) Update(_ context.Context, folder domain.Folder) (*domain.Folder, error) {
	return &folder, m.err
}

func (m *mockFolderService) Remove(_ context.Context, _ string) error {
	return m.err
}

func (m *mockFolderService) SetSyncing(_ context.Context, _ string, _ bool) error {
	return m.err
}

func (m *mockFolderService) ResetSent(_ context.Context, _ string) (int, error) {
	return 0, m.err
}
