// Package mcp provides an MCP (Model Context Protocol) server adapter for
// mediasync. It lets AI assistants start, stop and inspect sync cycles.
package mcp

import "errors"

// ErrMissingScheduler is returned when the sync scheduler is not provided.
var ErrMissingScheduler = errors.New("mcp: sync scheduler is required")
