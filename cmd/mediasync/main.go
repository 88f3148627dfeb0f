// Command mediasync uploads new media from local folders on a schedule.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/mediasync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/mediasync/internal/adapters/driven/status"
	"github.com/custodia-labs/mediasync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mediasync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/mediasync/internal/adapters/driven/uploader"
	"github.com/custodia-labs/mediasync/internal/adapters/driving/cli"
	"github.com/custodia-labs/mediasync/internal/adapters/driving/watch"
	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driven"
	"github.com/custodia-labs/mediasync/internal/core/ports/driving"
	"github.com/custodia-labs/mediasync/internal/core/services"
	"github.com/custodia-labs/mediasync/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

// Environment overrides for the config and data directories.
const (
	envConfigDir = "MEDIASYNC_CONFIG_DIR"
	envDataDir   = "MEDIASYNC_DATA_DIR"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	configStore, err := file.NewConfigStore(os.Getenv(envConfigDir))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if err := logger.SetFormat(settings.Log.Format); err != nil {
		return err
	}
	logger.SetVerbose(settings.Log.Verbose)
	defer logger.Sync() //nolint:errcheck

	a, err := newApp(settings, settingsService, os.Getenv(envDataDir))
	if err != nil {
		return err
	}
	defer a.close()

	cli.SetVersion(version)
	cli.Configure(a.services)
	return cli.Execute(context.Background(), args)
}

// app holds the wired components and their cleanup.
type app struct {
	services    cli.Services
	scheduler   *services.Scheduler
	constraints []driven.Constraint
	closers     []func() error
}

// newApp wires stores, the uploader, the scheduler, sinks and triggers.
func newApp(settings *domain.Settings, settingsService driving.SettingsService, dataDir string) (*app, error) {
	a := &app{}

	var (
		folderStore driven.FolderStore
		ledger      driven.SentLedger
		schedStore  driven.SchedulerStore
	)
	switch settings.Storage.Backend {
	case "memory":
		folderStore = memory.NewFolderStore()
		ledger = memory.NewSentLedger()
		schedStore = memory.NewSchedulerStore()
	default:
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		logger.Debug("store: %s", store.Path())
		a.closers = append(a.closers, store.Close)
		folderStore = store.FolderStore()
		ledger = store.SentLedger()
		schedStore = store.SchedulerStore()
	}

	factory := uploader.NewFactory(folderStore, ledger, uploader.NewLogTransport(), uploader.Options{
		UploadDelay: settings.Sync.UploadDelay,
		MediaType:   settings.Sync.MediaType,
	})

	sink := status.Fanout{
		status.NewZapSink(logger.L()),
		status.NewMetricsSink(),
		status.NewHistorySink(schedStore, domain.TaskIDMediaSync, status.DefaultHistoryKeep),
	}

	a.scheduler = services.NewScheduler(services.NewSyncRunner(factory), sink)
	folderService := services.NewFolderService(folderStore, ledger)

	network := uploader.SystemNetworkCheck()
	if settings.Sync.Network == domain.NetworkWiFiOnly && network == nil {
		logger.Warn("sync.network is %s but the connection type cannot be detected here; the policy is not enforced", settings.Sync.Network)
	}
	constraints := []driven.Constraint{
		uploader.FoldersAvailable(folderStore),
		uploader.NetworkAllowed(settings.Sync.Network, network),
	}

	triggers := []driving.Trigger{
		services.NewPeriodicTrigger(settings.TaskConfig(), schedStore, a.scheduler, constraints...),
	}
	if settings.Sync.Watch {
		triggers = append(triggers, watch.New(folderService, a.scheduler, watch.Options{
			Debounce:    domain.DefaultWatchDebounce,
			MediaType:   settings.Sync.MediaType,
			Constraints: constraints,
		}))
	}
	a.constraints = constraints

	a.services = cli.Services{
		Scheduler: a.scheduler,
		Folders:   folderService,
		Settings:  settingsService,
		Status:    services.NewStatusService(a.scheduler, schedStore),
		Triggers:  triggers,
	}
	return a, nil
}

// close stops the scheduler, flushing pending events, then closes stores.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.scheduler.Shutdown(ctx); err != nil {
		logger.Warn("scheduler shutdown: %v", err)
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("close: %v", err)
		}
	}
}
