package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driving"
)

const defaultReasonWidth = 60

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync state, schedule and recent cycles",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().IntP("history", "n", 10, "number of recent cycles to show")
	rootCmd.AddCommand(statusCmd)
}

// statusStyles holds the lipgloss styles for status output.
type statusStyles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
}

func newStatusStyles(w io.Writer) statusStyles {
	r := lipgloss.NewRenderer(w)
	return statusStyles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		label:   r.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		success: r.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		warning: r.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		failure: r.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
	}
}

func (s statusStyles) state(st domain.RunState) string {
	switch st {
	case domain.RunRunning:
		return s.success.Render(st.String())
	case domain.RunStopRequested:
		return s.warning.Render(st.String())
	default:
		return s.muted.Render(st.String())
	}
}

func (s statusStyles) outcome(o domain.Outcome) string {
	text := fmt.Sprintf("%-9s", o)
	switch o {
	case domain.OutcomeCompleted:
		return s.success.Render(text)
	case domain.OutcomeCancelled:
		return s.warning.Render(text)
	default:
		return s.failure.Render(text)
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if statusService == nil {
		return errors.New("status service not configured")
	}

	limit, _ := cmd.Flags().GetInt("history")
	status, err := statusService.Status(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	out := cmd.OutOrStdout()
	renderStatus(out, status, time.Now(), reasonWidth(out))
	return nil
}

// reasonWidth fits failure reasons to the terminal width.
func reasonWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultReasonWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width < 80 {
		return defaultReasonWidth
	}
	return width - 60
}

func renderStatus(w io.Writer, status *driving.SyncStatus, now time.Time, maxReason int) {
	st := newStatusStyles(w)
	label := func(s string) string { return st.label.Render(fmt.Sprintf("%-14s", s)) }

	fmt.Fprintln(w, st.title.Render("Sync status"))

	state := st.state(status.State)
	if !status.Handle.IsZero() {
		state += st.muted.Render(" (" + status.Handle.String() + ")")
	}
	fmt.Fprintf(w, "  %s%s\n", label("State:"), state)

	if task := status.Task; task != nil {
		fmt.Fprintf(w, "  %s%s\n", label("Interval:"), task.Interval)
		switch {
		case !task.Enabled:
			fmt.Fprintf(w, "  %s%s\n", label("Next run:"), st.muted.Render("disabled"))
		case task.NextRun.After(now):
			fmt.Fprintf(w, "  %s%s (in %s)\n", label("Next run:"),
				formatTime(task.NextRun), task.NextRun.Sub(now).Round(time.Second))
		default:
			fmt.Fprintf(w, "  %s%s\n", label("Next run:"), "due")
		}
		if !task.LastSuccess.IsZero() {
			fmt.Fprintf(w, "  %s%s\n", label("Last success:"), formatTime(task.LastSuccess))
		}
		if task.LastError != "" {
			fmt.Fprintf(w, "  %s%s\n", label("Last error:"), st.failure.Render(truncate(task.LastError, maxReason)))
		}
	} else {
		fmt.Fprintf(w, "  %s%s\n", label("Next run:"), st.muted.Render("not scheduled (start 'mediasync run')"))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, st.title.Render("Recent cycles"))
	if len(status.History) == 0 {
		fmt.Fprintln(w, st.muted.Render("  none yet"))
		return
	}

	for _, r := range status.History {
		line := fmt.Sprintf("  %s  %s  %4d files  %8s",
			formatTime(r.StartedAt), st.outcome(r.Outcome), r.ItemsProcessed,
			r.EndedAt.Sub(r.StartedAt).Round(time.Second))
		if r.Error != "" {
			line += "  " + st.muted.Render(truncate(r.Error, maxReason))
		}
		fmt.Fprintln(w, line)
	}
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if n <= 3 || len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
