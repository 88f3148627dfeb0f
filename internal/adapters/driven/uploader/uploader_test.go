package uploader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediasync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driven"
)

// recordingTransport implements driven.Transport for testing.
type recordingTransport struct {
	mu    sync.Mutex
	sent  []string
	errAt map[string]error
}

func (t *recordingTransport) Send(_ context.Context, _ domain.Folder, item domain.MediaItem) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.errAt[item.Name]; err != nil {
		return err
	}
	t.sent = append(t.sent, item.Name)
	return nil
}

var _ driven.Transport = (*recordingTransport)(nil)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("data"), 0600))
	}
}

type fixture struct {
	folders   *memory.FolderStore
	ledger    *memory.SentLedger
	transport *recordingTransport
}

func newFixture(t *testing.T, folders ...domain.Folder) *fixture {
	t.Helper()
	f := &fixture{
		folders:   memory.NewFolderStore(),
		ledger:    memory.NewSentLedger(),
		transport: &recordingTransport{errAt: map[string]error{}},
	}
	for _, folder := range folders {
		require.NoError(t, f.folders.Save(context.Background(), folder))
	}
	return f
}

func (f *fixture) factory(opts Options) *Factory {
	return NewFactory(f.folders, f.ledger, f.transport, opts)
}

func drain(t *testing.T, u driven.Uploader) ([]string, error) {
	t.Helper()
	var names []string
	for i := 0; i < 100; i++ {
		step, err := u.UploadNext(context.Background())
		if err != nil {
			return names, err
		}
		if step.Done {
			return names, nil
		}
		require.NotNil(t, step.Item)
		names = append(names, step.Item.Name)
	}
	t.Fatal("uploader never reported done")
	return nil, nil
}

func TestFactory_QueuesMatchingMedia(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.JPG", "a.png", "clip.mp4", "notes.txt", ".hidden.jpg")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.jpg"), 0700))

	fx := newFixture(t, domain.Folder{ID: "f1", Name: "Camera", Path: dir, MediaType: domain.MediaPhoto, Syncing: true})

	u, err := fx.factory(Options{}).NewUploader(context.Background())
	require.NoError(t, err)

	names, err := drain(t, u)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.JPG"}, names)
	assert.Equal(t, names, fx.transport.sent)

	sent, err := fx.ledger.IsSent(context.Background(), domain.SentKey("f1", domain.MediaPhoto, "a.png"))
	require.NoError(t, err)
	assert.True(t, sent)
}

func TestFactory_SkipsSentAndDisabledFolders(t *testing.T) {
	syncing := t.TempDir()
	idle := t.TempDir()
	writeFiles(t, syncing, "1.jpg", "2.jpg")
	writeFiles(t, idle, "3.jpg")

	fx := newFixture(t,
		domain.Folder{ID: "f1", Name: "a", Path: syncing, MediaType: domain.MediaAll, Syncing: true},
		domain.Folder{ID: "f2", Name: "b", Path: idle, MediaType: domain.MediaAll, Syncing: false},
	)
	require.NoError(t, fx.ledger.MarkSent(context.Background(), domain.SentKey("f1", domain.MediaAll, "1.jpg")))

	u, err := fx.factory(Options{}).NewUploader(context.Background())
	require.NoError(t, err)

	names, err := drain(t, u)
	require.NoError(t, err)
	assert.Equal(t, []string{"2.jpg"}, names)
}

func TestFactory_GlobalMediaTypeFilter(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.jpg", "b.mov")

	fx := newFixture(t, domain.Folder{ID: "f1", Name: "a", Path: dir, MediaType: domain.MediaAll, Syncing: true})

	u, err := fx.factory(Options{MediaType: domain.MediaVideo}).NewUploader(context.Background())
	require.NoError(t, err)

	names, err := drain(t, u)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.mov"}, names)
}

func TestFactory_MissingFolderSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.jpg")

	fx := newFixture(t,
		domain.Folder{ID: "f1", Name: "gone", Path: filepath.Join(dir, "missing"), MediaType: domain.MediaAll, Syncing: true},
		domain.Folder{ID: "f2", Name: "here", Path: dir, MediaType: domain.MediaAll, Syncing: true},
	)

	u, err := fx.factory(Options{}).NewUploader(context.Background())
	require.NoError(t, err)

	names, err := drain(t, u)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg"}, names)
}

func TestFolderUploader_TransportFailureKeepsItemUnsent(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.jpg", "b.jpg", "c.jpg")

	fx := newFixture(t, domain.Folder{ID: "f1", Name: "a", Path: dir, MediaType: domain.MediaPhoto, Syncing: true})
	fx.transport.errAt["b.jpg"] = errors.New("connection reset")
	factory := fx.factory(Options{})

	u, err := factory.NewUploader(context.Background())
	require.NoError(t, err)

	names, err := drain(t, u)
	require.ErrorIs(t, err, domain.ErrUploaderFailure)
	assert.Contains(t, err.Error(), "send b.jpg: connection reset")
	assert.Equal(t, []string{"a.jpg"}, names)

	// The next cycle retries b.jpg and continues with c.jpg
	delete(fx.transport.errAt, "b.jpg")
	u, err = factory.NewUploader(context.Background())
	require.NoError(t, err)
	names, err = drain(t, u)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.jpg", "c.jpg"}, names)
}

func TestFolderUploader_RateLimitedBacksOff(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.jpg")

	fx := newFixture(t, domain.Folder{ID: "f1", Name: "a", Path: dir, MediaType: domain.MediaPhoto, Syncing: true})
	fx.transport.errAt["a.jpg"] = &RateLimitedError{RetryAfter: time.Hour}
	factory := fx.factory(Options{})

	u, err := factory.NewUploader(context.Background())
	require.NoError(t, err)
	_, err = u.UploadNext(context.Background())
	require.ErrorIs(t, err, domain.ErrUploaderFailure)

	// The shared pacer now holds uploads back
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	u, err = factory.NewUploader(ctx)
	require.NoError(t, err)
	_, err = u.UploadNext(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFolderUploader_CancelledWhilePacing(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.jpg", "b.jpg")

	fx := newFixture(t, domain.Folder{ID: "f1", Name: "a", Path: dir, MediaType: domain.MediaPhoto, Syncing: true})
	u, err := fx.factory(Options{UploadDelay: time.Hour}).NewUploader(context.Background())
	require.NoError(t, err)

	// First upload is immediate
	step, err := u.UploadNext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", step.Item.Name)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = u.UploadNext(ctx)
	require.ErrorIs(t, err, context.Canceled)

	sent, err := fx.ledger.IsSent(context.Background(), domain.SentKey("f1", domain.MediaPhoto, "b.jpg"))
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestLogTransport_Send(t *testing.T) {
	tr := NewLogTransport()
	item := domain.MediaItem{Name: "a.jpg", MediaType: domain.MediaPhoto}

	assert.NoError(t, tr.Send(context.Background(), domain.Folder{Name: "cam"}, item))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, tr.Send(ctx, domain.Folder{Name: "cam"}, item), context.Canceled)
}
