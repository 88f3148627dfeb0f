package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/mediasync/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/mediasync/internal/adapters/driving/mcp"
	"github.com/custodia-labs/mediasync/internal/core/ports/driving"
	"github.com/custodia-labs/mediasync/internal/logger"
)

// stopTimeout bounds how long the daemon waits for an active cycle on exit.
var stopTimeout = 30 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sync daemon",
	Long: `Runs the background sync daemon in the foreground.

The daemon starts a cycle when the schedule is due and, when folder
watching is enabled, shortly after new media appears. With --addr (or the
server.addr setting) it also serves the HTTP API.

Stop it with Ctrl-C or SIGTERM. An active cycle is asked to stop and
given time to finish its current upload.`,
	RunE: runDaemon,
}

func init() {
	runCmd.Flags().String("addr", "", "HTTP API listen address (overrides server.addr)")
	rootCmd.AddCommand(runCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errSchedulerMissing
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" && settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			addr = settings.Server.Addr
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, addr); err != nil {
		return err
	}

	cmd.Println("Shutting down...")
	return stopActiveRun()
}

// serve runs triggers and the optional HTTP API until ctx is cancelled
// or one of them fails. The HTTP API also carries the MCP endpoint at /mcp.
func serve(ctx context.Context, addr string) error {
	var srv *httpapi.Server
	if addr != "" {
		mcpServer, err := mcp.NewServer(&mcp.Ports{
			Scheduler: scheduler,
			Status:    statusService,
			Folders:   folderService,
		})
		if err != nil {
			return err
		}
		srv = httpapi.NewServer(addr, scheduler, statusService, logger.L())
		srv.Mount("/mcp", mcpServer.Handler())
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range triggers {
		g.Go(func() error {
			return runTrigger(gctx, t)
		})
	}
	if srv != nil {
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}

	logger.Info("daemon started (%d triggers)", len(triggers))

	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// runTrigger runs t until ctx ends, then stops it.
func runTrigger(ctx context.Context, t driving.Trigger) error {
	err := t.Start(ctx)
	if stopErr := t.Stop(); stopErr != nil {
		logger.Warn("trigger stop: %v", stopErr)
	}
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return fmt.Errorf("trigger: %w", err)
}

// stopActiveRun asks the active cycle to stop and waits for it.
func stopActiveRun() error {
	handle := scheduler.ActiveHandle()
	if handle.IsZero() {
		return nil
	}
	if err := scheduler.RequestStop(handle); err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if _, err := scheduler.Wait(ctx, handle); err != nil {
		return fmt.Errorf("cycle %s did not stop: %w", handle, err)
	}
	return nil
}
