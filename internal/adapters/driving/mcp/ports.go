package mcp

import (
	"github.com/custodia-labs/mediasync/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Scheduler starts and stops sync cycles.
	Scheduler driving.SyncScheduler

	// Status reports schedule and history. Optional.
	Status driving.StatusService

	// Folders lists synchronised folders. Optional.
	Folders driving.FolderService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Scheduler == nil {
		return ErrMissingScheduler
	}
	return nil
}
