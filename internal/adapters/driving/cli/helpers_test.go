package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/mediasync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/services"
)

// executorFunc adapts a function to services.Executor.
type executorFunc func(ctx context.Context, handle domain.RunHandle) domain.RunResult

func (f executorFunc) Execute(ctx context.Context, handle domain.RunHandle) domain.RunResult {
	return f(ctx, handle)
}

// testServices wires real services over memory stores.
type testServices struct {
	scheduler *services.Scheduler
	folders   *services.FolderService
	settings  *services.SettingsService
	status    *services.StatusService
	store     *memory.SchedulerStore
}

func setupServices(t *testing.T, exec services.Executor) *testServices {
	t.Helper()

	sched := services.NewScheduler(exec, nil)
	store := memory.NewSchedulerStore()
	ts := &testServices{
		scheduler: sched,
		folders:   services.NewFolderService(memory.NewFolderStore(), memory.NewSentLedger()),
		settings:  services.NewSettingsService(memory.NewConfigStore()),
		status:    services.NewStatusService(sched, store),
		store:     store,
	}

	Configure(Services{
		Scheduler: ts.scheduler,
		Folders:   ts.folders,
		Settings:  ts.settings,
		Status:    ts.status,
	})

	t.Cleanup(func() {
		Configure(Services{})
		if h := sched.ActiveHandle(); !h.IsZero() {
			_ = sched.RequestStop(h)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = sched.Shutdown(ctx)
	})
	return ts
}

// completingExecutor finishes immediately with items uploaded.
func completingExecutor(items int) services.Executor {
	return executorFunc(func(_ context.Context, handle domain.RunHandle) domain.RunResult {
		return domain.RunResult{Handle: handle, Outcome: domain.OutcomeCompleted, Items: items}
	})
}

// blockingExecutor runs until cancelled.
func blockingExecutor() services.Executor {
	return executorFunc(func(ctx context.Context, handle domain.RunHandle) domain.RunResult {
		<-ctx.Done()
		return domain.RunResult{Handle: handle, Outcome: domain.OutcomeCancelled}
	})
}

// resetFlags restores every flag in the tree to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
