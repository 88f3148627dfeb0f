// Package watch provides a filesystem trigger that requests a sync cycle
// shortly after new media appears in a syncing folder.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driven"
	"github.com/custodia-labs/mediasync/internal/core/ports/driving"
	"github.com/custodia-labs/mediasync/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driving.Trigger = (*Watcher)(nil)

// Defaults for Options.
const (
	DefaultDebounce          = 5 * time.Second
	DefaultBusyBackoff       = 30 * time.Second
	DefaultConstraintBackoff = time.Minute
	DefaultRescanInterval    = time.Minute
)

// Options tunes the watcher.
type Options struct {
	// Debounce is the quiet period after the last media event before a
	// run is requested.
	Debounce time.Duration

	// BusyBackoff is the delay before retrying when a cycle is already active.
	BusyBackoff time.Duration

	// ConstraintBackoff is the delay before checking constraints again when
	// one is not met.
	ConstraintBackoff time.Duration

	// RescanInterval is how often the set of watched folders is refreshed.
	RescanInterval time.Duration

	// Constraints must all be ready before a run is requested. They are the
	// same checks the periodic trigger applies.
	Constraints []driven.Constraint

	// MediaType is the global media filter.
	MediaType domain.MediaType
}

func (o Options) withDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.BusyBackoff <= 0 {
		o.BusyBackoff = DefaultBusyBackoff
	}
	if o.ConstraintBackoff <= 0 {
		o.ConstraintBackoff = DefaultConstraintBackoff
	}
	if o.RescanInterval <= 0 {
		o.RescanInterval = DefaultRescanInterval
	}
	if o.MediaType == "" {
		o.MediaType = domain.MediaAll
	}
	return o
}

// FolderLister lists folders. Both driving.FolderService and
// driven.FolderStore satisfy it.
type FolderLister interface {
	List(ctx context.Context) ([]domain.Folder, error)
}

// Watcher watches syncing folders and requests a run when media files are
// created or written. Bursts of events collapse into one request.
type Watcher struct {
	folders   FolderLister
	scheduler driving.SyncScheduler
	opts      Options

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}

	// watched maps a directory path to its folder.
	watched map[string]domain.Folder
}

// New creates a watcher for the folders returned by folders.
func New(folders FolderLister, scheduler driving.SyncScheduler, opts Options) *Watcher {
	return &Watcher{
		folders:   folders,
		scheduler: scheduler,
		opts:      opts.withDefaults(),
		watched:   make(map[string]domain.Folder),
	}
}

// Start watches until Stop is called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.markStopped()
		return err
	}
	defer fsw.Close()

	w.refresh(ctx, fsw)

	rescan := time.NewTicker(w.opts.RescanInterval)
	defer rescan.Stop()

	// fire is nil while no request is pending
	var timer *time.Timer
	var fire <-chan time.Time
	arm := func(d time.Duration) {
		if timer == nil {
			timer = time.NewTimer(d)
		} else {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(d)
		}
		fire = timer.C
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.markStopped()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-rescan.C:
			w.refresh(ctx, fsw)
		case event, ok := <-fsw.Events:
			if !ok {
				w.markStopped()
				return nil
			}
			if w.relevant(event) {
				logger.Debug("watch: %s %s", event.Op, event.Name)
				arm(w.opts.Debounce)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				w.markStopped()
				return nil
			}
			logger.Warn("watch: %v", err)
		case <-fire:
			fire = nil
			if retry := w.request(ctx); retry > 0 {
				arm(retry)
			}
		}
	}
}

// Stop halts the watch loop.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return nil
	}
	w.running = false
	close(w.stopCh)
	return nil
}

func (w *Watcher) markStopped() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

// Watched returns the watched directory paths.
func (w *Watcher) Watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, 0, len(w.watched))
	for p := range w.watched {
		paths = append(paths, p)
	}
	return paths
}

// request asks the scheduler for a run once the constraints allow it.
// It returns the delay before the next attempt, or zero when done.
func (w *Watcher) request(ctx context.Context) time.Duration {
	if err := driven.CheckConstraints(ctx, w.opts.Constraints); err != nil {
		logger.Info("watch: sync deferred %s: %v", w.opts.ConstraintBackoff, err)
		return w.opts.ConstraintBackoff
	}

	handle, err := w.scheduler.RequestRun(ctx)
	switch {
	case err == nil:
		logger.Info("watch: new media, started run %s", handle)
		return 0
	case errors.Is(err, domain.ErrBusy):
		logger.Debug("watch: scheduler busy, retrying in %s", w.opts.BusyBackoff)
		return w.opts.BusyBackoff
	default:
		logger.Warn("watch: run request failed: %v", err)
		return 0
	}
}

// refresh syncs the fsnotify watch list with the syncing folders.
func (w *Watcher) refresh(ctx context.Context, fsw *fsnotify.Watcher) {
	folders, err := w.folders.List(ctx)
	if err != nil {
		logger.Warn("watch: list folders: %v", err)
		return
	}

	want := make(map[string]domain.Folder)
	for _, f := range folders {
		if f.Syncing {
			want[filepath.Clean(f.Path)] = f
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for path := range w.watched {
		if _, ok := want[path]; !ok {
			_ = fsw.Remove(path)
			delete(w.watched, path)
			logger.Debug("watch: removed %s", path)
		}
	}
	for path, f := range want {
		if _, ok := w.watched[path]; ok {
			w.watched[path] = f
			continue
		}
		if err := fsw.Add(path); err != nil {
			logger.Warn("watch: cannot watch %s: %v", path, err)
			continue
		}
		w.watched[path] = f
		logger.Debug("watch: added %s", path)
	}
}

// relevant reports whether event concerns a new or changed media file that
// the owning folder would upload.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}

	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}

	w.mu.Lock()
	folder, ok := w.watched[filepath.Dir(event.Name)]
	w.mu.Unlock()
	if !ok {
		return false
	}
	if !folder.MediaType.Matches(name) || !w.opts.MediaType.Matches(name) {
		return false
	}

	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return true
}
