package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driven"
)

// --- Mock implementations shared by service tests ---

// mockSchedulerStore implements driven.SchedulerStore for testing.
type mockSchedulerStore struct {
	mu       sync.RWMutex
	tasks    map[string]*domain.ScheduledTask
	results  map[string][]domain.TaskResult
	saveErr  error
	getErr   error
	pruneErr error
}

func newMockSchedulerStore() *mockSchedulerStore {
	return &mockSchedulerStore{
		tasks:   make(map[string]*domain.ScheduledTask),
		results: make(map[string][]domain.TaskResult),
	}
}

func (m *mockSchedulerStore) GetTask(_ context.Context, taskID string) (*domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	task, exists := m.tasks[taskID]
	if !exists {
		return nil, nil
	}
	// Return a copy
	taskCopy := *task
	return &taskCopy, nil
}

func (m *mockSchedulerStore) ListTasks(_ context.Context) ([]domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tasks := make([]domain.ScheduledTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func (m *mockSchedulerStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if task == nil {
		return domain.ErrInvalidInput
	}
	taskCopy := *task
	m.tasks[task.ID] = &taskCopy
	return nil
}

func (m *mockSchedulerStore) DeleteTask(_ context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, taskID)
	return nil
}

func (m *mockSchedulerStore) RecordResult(_ context.Context, result *domain.TaskResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if result == nil {
		return domain.ErrInvalidInput
	}
	m.results[result.TaskID] = append([]domain.TaskResult{*result}, m.results[result.TaskID]...)
	return nil
}

func (m *mockSchedulerStore) GetTaskHistory(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := m.results[taskID]
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *mockSchedulerStore) PruneHistory(_ context.Context, _ int) error {
	return m.pruneErr
}

func (m *mockSchedulerStore) task(id string) domain.ScheduledTask {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.tasks[id]; ok {
		return *t
	}
	return domain.ScheduledTask{}
}

// recordingSink implements driven.StatusSink and keeps every event.
type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) Publish(e domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) snapshot() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *recordingSink) kinds() []domain.EventKind {
	events := s.snapshot()
	kinds := make([]domain.EventKind, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	return kinds
}

func (s *recordingSink) count(kind domain.EventKind) int {
	n := 0
	for _, e := range s.snapshot() {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// gatedExecutor blocks each run until the test releases it or the run is cancelled.
type gatedExecutor struct {
	started chan domain.RunHandle
	finish  chan domain.RunResult
}

func newGatedExecutor() *gatedExecutor {
	return &gatedExecutor{
		started: make(chan domain.RunHandle, 16),
		finish:  make(chan domain.RunResult),
	}
}

func (e *gatedExecutor) Execute(ctx context.Context, handle domain.RunHandle) domain.RunResult {
	e.started <- handle
	select {
	case r := <-e.finish:
		return r
	case <-ctx.Done():
		return domain.RunResult{Outcome: domain.OutcomeCancelled}
	}
}

// executorFunc adapts a function to Executor.
type executorFunc func(ctx context.Context, handle domain.RunHandle) domain.RunResult

func (f executorFunc) Execute(ctx context.Context, handle domain.RunHandle) domain.RunResult {
	return f(ctx, handle)
}

// scriptedUploader implements driven.Uploader by replaying steps.
type scriptedUploader struct {
	mu      sync.Mutex
	items   []domain.MediaItem
	failAt  int // index at which UploadNext fails, -1 for never
	failErr error
	panicAt int // index at which UploadNext panics, -1 for never
	calls   int
	closed  bool

	// onCall runs before each step, outside the lock.
	onCall func(call int)
}

func newScriptedUploader(n int) *scriptedUploader {
	items := make([]domain.MediaItem, n)
	for i := range items {
		items[i] = domain.MediaItem{FolderID: "f1", Name: string(rune('a'+i)) + ".jpg", MediaType: domain.MediaPhoto}
	}
	return &scriptedUploader{items: items, failAt: -1, panicAt: -1}
}

func (u *scriptedUploader) UploadNext(_ context.Context) (domain.UploadStep, error) {
	u.mu.Lock()
	call := u.calls
	u.calls++
	hook := u.onCall
	u.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if call == u.panicAt {
		panic("boom")
	}
	if call == u.failAt {
		err := u.failErr
		if err == nil {
			err = errors.New("transport down")
		}
		return domain.UploadStep{}, err
	}
	if call >= len(u.items) {
		return domain.UploadStep{Done: true}, nil
	}
	item := u.items[call]
	return domain.UploadStep{Item: &item}, nil
}

func (u *scriptedUploader) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.closed = true
	return nil
}

func (u *scriptedUploader) callCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

// mockUploaderFactory implements driven.UploaderFactory for testing.
type mockUploaderFactory struct {
	uploader driven.Uploader
	err      error
	calls    int
}

func (f *mockUploaderFactory) NewUploader(_ context.Context) (driven.Uploader, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.uploader, nil
}

// mockFolderStore implements driven.FolderStore for testing.
type mockFolderStore struct {
	mu      sync.Mutex
	folders map[string]domain.Folder
	saveErr error
}

func newMockFolderStore() *mockFolderStore {
	return &mockFolderStore{folders: make(map[string]domain.Folder)}
}

func (m *mockFolderStore) Save(_ context.Context, folder domain.Folder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.folders[folder.ID] = folder
	return nil
}

func (m *mockFolderStore) Get(_ context.Context, id string) (*domain.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.folders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &f, nil
}

func (m *mockFolderStore) List(_ context.Context) ([]domain.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Folder, 0, len(m.folders))
	for _, f := range m.folders {
		out = append(out, f)
	}
	return out, nil
}

func (m *mockFolderStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.folders[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.folders, id)
	return nil
}

// mockLedger implements driven.SentLedger for testing.
type mockLedger struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMockLedger(keys ...string) *mockLedger {
	l := &mockLedger{keys: make(map[string]bool)}
	for _, k := range keys {
		l.keys[k] = true
	}
	return l
}

func (l *mockLedger) IsSent(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.keys[key], nil
}

func (l *mockLedger) MarkSent(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys[key] = true
	return nil
}

func (l *mockLedger) ClearPrefix(_ context.Context, prefix string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k := range l.keys {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(l.keys, k)
			n++
		}
	}
	return n, nil
}

// Ensure mocks implement interfaces
var (
	_ driven.SchedulerStore  = (*mockSchedulerStore)(nil)
	_ driven.StatusSink      = (*recordingSink)(nil)
	_ Executor               = (*gatedExecutor)(nil)
	_ driven.Uploader        = (*scriptedUploader)(nil)
	_ driven.UploaderFactory = (*mockUploaderFactory)(nil)
	_ driven.FolderStore     = (*mockFolderStore)(nil)
	_ driven.SentLedger      = (*mockLedger)(nil)
)
