package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/mediasync/internal/core/domain"
)

const (
	defaultHistoryLimit = 5
	maxWaitSeconds      = 600
)

// StartInput is the input schema for the sync_start tool.
type StartInput struct {
	WaitSeconds int `json:"wait_seconds,omitempty" jsonschema:"seconds to wait for the cycle to finish (0 returns immediately, max 600)"`
}

// StartOutput is the output schema for the sync_start tool.
type StartOutput struct {
	Started bool          `json:"started"`
	Handle  string        `json:"handle,omitempty"`
	Busy    bool          `json:"busy,omitempty"`
	State   string        `json:"state"`
	Result  *ResultOutput `json:"result,omitempty"`
}

// StopInput is the input schema for the sync_stop tool.
type StopInput struct {
	Handle string `json:"handle,omitempty" jsonschema:"handle of the cycle to stop (default: the active cycle)"`
}

// StopOutput is the output schema for the sync_stop tool.
type StopOutput struct {
	Stopped bool   `json:"stopped"`
	Handle  string `json:"handle,omitempty"`
	State   string `json:"state"`
}

// StatusInput is the input schema for the sync_status tool.
type StatusInput struct {
	History int `json:"history,omitempty" jsonschema:"number of recent results to include (default 5)"`
}

// StatusOutput is the output schema for the sync_status tool.
type StatusOutput struct {
	State   string         `json:"state"`
	Handle  string         `json:"handle,omitempty"`
	NextRun *time.Time     `json:"next_run,omitempty"`
	History []ResultOutput `json:"history"`
}

// ResultOutput describes a finished cycle.
type ResultOutput struct {
	Handle    string    `json:"handle"`
	Outcome   string    `json:"outcome"`
	Reason    string    `json:"reason,omitempty"`
	Items     int       `json:"items"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_start",
		Description: "Start a media sync cycle unless one is already running",
	}, s.handleStart)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_stop",
		Description: "Ask the running media sync cycle to stop",
	}, s.handleStop)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_status",
		Description: "Show the sync state, next scheduled run and recent results",
	}, s.handleStatus)
}

// handleStart handles the sync_start tool invocation.
func (s *Server) handleStart(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StartInput,
) (*mcp.CallToolResult, StartOutput, error) {
	sched := s.ports.Scheduler

	handle, err := sched.RequestRun(ctx)
	if errors.Is(err, domain.ErrBusy) {
		return nil, StartOutput{
			Busy:   true,
			Handle: sched.ActiveHandle().String(),
			State:  sched.CurrentState().String(),
		}, nil
	}
	if err != nil {
		return nil, StartOutput{}, err
	}

	output := StartOutput{Started: true, Handle: handle.String()}

	if wait := min(input.WaitSeconds, maxWaitSeconds); wait > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, time.Duration(wait)*time.Second)
		defer cancel()
		result, err := sched.Wait(waitCtx, handle)
		if err == nil {
			view := newResultOutput(result)
			output.Result = &view
		}
	}

	output.State = sched.CurrentState().String()
	return nil, output, nil
}

// handleStop handles the sync_stop tool invocation.
func (s *Server) handleStop(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input StopInput,
) (*mcp.CallToolResult, StopOutput, error) {
	sched := s.ports.Scheduler

	handle := domain.RunHandle(input.Handle)
	if handle.IsZero() {
		handle = sched.ActiveHandle()
	}

	err := sched.RequestStop(handle)
	if err != nil && !errors.Is(err, domain.ErrStaleHandle) {
		return nil, StopOutput{}, err
	}

	return nil, StopOutput{
		Stopped: err == nil,
		Handle:  handle.String(),
		State:   sched.CurrentState().String(),
	}, nil
}

// handleStatus handles the sync_status tool invocation.
func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	sched := s.ports.Scheduler
	output := StatusOutput{
		State:   sched.CurrentState().String(),
		Handle:  sched.ActiveHandle().String(),
		History: []ResultOutput{},
	}

	if s.ports.Status == nil {
		if last, ok := sched.LastResult(); ok {
			output.History = append(output.History, newResultOutput(last))
		}
		return nil, output, nil
	}

	limit := input.History
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	status, err := s.ports.Status.Status(ctx, limit)
	if err != nil {
		return nil, StatusOutput{}, err
	}
	if status.Task != nil && status.Task.Enabled {
		next := status.Task.NextRun
		output.NextRun = &next
	}
	for _, r := range status.History {
		output.History = append(output.History, ResultOutput{
			Handle:    r.RunHandle.String(),
			Outcome:   string(r.Outcome),
			Reason:    r.Error,
			Items:     r.ItemsProcessed,
			StartedAt: r.StartedAt,
			EndedAt:   r.EndedAt,
		})
	}

	return nil, output, nil
}

func newResultOutput(r domain.RunResult) ResultOutput {
	return ResultOutput{
		Handle:    r.Handle.String(),
		Outcome:   string(r.Outcome),
		Reason:    r.Reason,
		Items:     r.Items,
		StartedAt: r.StartedAt,
		EndedAt:   r.EndedAt,
	}
}
