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

	"github.com/custodia-labs/mediasync/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/mediasync/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync cycle now",
	Long: `Starts a sync cycle immediately and waits for it to finish.

Press Ctrl-C to stop the cycle. The current upload completes before the
cycle ends.

With --detach the cycle is started by the running daemon ('mediasync run')
through its HTTP API at server.addr (or --addr), and the command returns at
once. The cycle keeps running in the daemon.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().Bool("detach", false, "start the cycle in the running daemon and return")
	syncCmd.Flags().String("addr", "", "daemon HTTP address for --detach (overrides server.addr)")
	rootCmd.AddCommand(syncCmd)
}

var (
	errSchedulerMissing  = errors.New("sync scheduler not configured")
	errDaemonAddrMissing = errors.New("--detach needs a running daemon: set server.addr or pass --addr")
)

func runSync(cmd *cobra.Command, _ []string) error {
	if detach, _ := cmd.Flags().GetBool("detach"); detach {
		return runDetached(cmd)
	}
	if scheduler == nil {
		return errSchedulerMissing
	}

	ctx := cmd.Context()
	handle, err := scheduler.RequestRun(ctx)
	if errors.Is(err, domain.ErrBusy) {
		return fmt.Errorf("a sync cycle is already running (%s)", scheduler.ActiveHandle())
	}
	if err != nil {
		return fmt.Errorf("failed to start sync: %w", err)
	}

	cmd.Printf("Started sync %s\n", handle)

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupts)

	result, err := waitForRun(ctx, handle, interrupts, func() {
		cmd.Println("Stopping... (waiting for the current upload)")
	})
	if err != nil {
		return err
	}

	return reportResult(cmd, result)
}

// runDetached asks the daemon to start a cycle. The local scheduler is not
// used: it stops when this process exits.
func runDetached(cmd *cobra.Command) error {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" && settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			addr = settings.Server.Addr
		}
	}
	if addr == "" {
		return errDaemonAddrMissing
	}

	client := httpapi.NewClient(addr)
	handle, err := client.StartRun(cmd.Context())
	if errors.Is(err, domain.ErrBusy) {
		return fmt.Errorf("a sync cycle is already running (%s)", handle)
	}
	if err != nil {
		return fmt.Errorf("failed to start sync: %w", err)
	}

	cmd.Printf("Started sync %s on %s\n", handle, client.BaseURL())
	return nil
}

// waitForRun waits for handle to finish. The first interrupt requests a
// stop and keeps waiting; a second interrupt stops waiting.
func waitForRun(
	ctx context.Context,
	handle domain.RunHandle,
	interrupts <-chan os.Signal,
	onStop func(),
) (domain.RunResult, error) {
	type waitResult struct {
		result domain.RunResult
		err    error
	}

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan waitResult, 1)
	go func() {
		r, err := scheduler.Wait(waitCtx, handle)
		done <- waitResult{r, err}
	}()

	stopping := false
	for {
		select {
		case w := <-done:
			return w.result, w.err
		case <-interrupts:
			if stopping {
				return domain.RunResult{}, errors.New("interrupted")
			}
			stopping = true
			if err := scheduler.RequestStop(handle); err == nil && onStop != nil {
				onStop()
			}
		}
	}
}

// reportResult prints the outcome and turns a failed cycle into an error.
// A cancelled cycle is reported but is not a command failure.
func reportResult(cmd *cobra.Command, result domain.RunResult) error {
	err := result.Err()
	switch {
	case err == nil:
		cmd.Printf("Sync completed: %d files uploaded in %s\n", result.Items, result.Duration().Round(time.Millisecond))
		return nil
	case errors.Is(err, domain.ErrCancelled):
		cmd.Printf("Sync cancelled after %d files\n", result.Items)
		return nil
	default:
		return fmt.Errorf("sync failed after %d files: %w", result.Items, err)
	}
}
