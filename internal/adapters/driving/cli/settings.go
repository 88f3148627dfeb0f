package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediasync/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change sync settings.

Settings are stored in ~/.mediasync/config.toml and take effect the next
time the daemon starts.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a single setting.

Keys:
  sync.interval_minutes  minutes between scheduled cycles (>= 1)
  sync.media_type        photo, video or all
  sync.upload_delay_ms   pause between uploads in milliseconds
  sync.network           wifi_and_mobile or wifi_only
  sync.watch             start a cycle when new media appears (true/false)
  sync.max_run_minutes   stop cycles running longer than this (0 = never)
  server.addr            HTTP API listen address (empty disables it)
  log.format             console or json
  log.verbose            debug logging (true/false)
  storage.backend        sqlite or memory`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

var errSettingsServiceMissing = errors.New("settings service not configured")

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsServiceMissing
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Sync]")
	cmd.Printf("  Interval: %s\n", settings.Sync.Interval)
	cmd.Printf("  Media type: %s\n", settings.Sync.MediaType)
	cmd.Printf("  Upload delay: %s\n", settings.Sync.UploadDelay)
	cmd.Printf("  Network: %s\n", settings.Sync.Network)
	cmd.Printf("  Watch folders: %t\n", settings.Sync.Watch)
	if settings.Sync.MaxRunDuration > 0 {
		cmd.Printf("  Max run: %s\n", settings.Sync.MaxRunDuration)
	} else {
		cmd.Println("  Max run: unlimited")
	}
	cmd.Println()

	cmd.Println("[Server]")
	if settings.Server.Addr != "" {
		cmd.Printf("  Address: %s\n", settings.Server.Addr)
	} else {
		cmd.Println("  Address: (disabled)")
	}
	cmd.Println()

	cmd.Println("[Log]")
	cmd.Printf("  Format: %s\n", settings.Log.Format)
	cmd.Printf("  Verbose: %t\n", settings.Log.Verbose)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend)

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsServiceMissing
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return fmt.Errorf("invalid value for %s: %w (keys: %s)",
				key, err, strings.Join(settingsService.Keys(), ", "))
		}
		return fmt.Errorf("failed to save setting: %w", err)
	}

	cmd.Printf("%s = %s\n", key, value)
	return nil
}
