// Package cli provides the cobra command tree for mediasync.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediasync/internal/core/ports/driving"
	"github.com/custodia-labs/mediasync/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services set by Configure.
var (
	scheduler       driving.SyncScheduler
	folderService   driving.FolderService
	settingsService driving.SettingsService
	statusService   driving.StatusService
	triggers        []driving.Trigger
)

var verbose bool

// Services holds the driving ports the commands use.
type Services struct {
	Scheduler driving.SyncScheduler
	Folders   driving.FolderService
	Settings  driving.SettingsService
	Status    driving.StatusService

	// Triggers are started by the run command.
	Triggers []driving.Trigger
}

var rootCmd = &cobra.Command{
	Use:   "mediasync",
	Short: "Periodic background media sync",
	Long: `mediasync uploads new photos and videos from local folders.

Cycles are started by a periodic schedule, by new files appearing in a
watched folder, or manually. At most one cycle runs at a time.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Configure installs the services used by the commands.
func Configure(s Services) {
	scheduler = s.Scheduler
	folderService = s.Folders
	settingsService = s.Settings
	statusService = s.Status
	triggers = s.Triggers
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context, args []string) error {
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("mediasync: %w", err)
	}
	return nil
}
