package domain

import (
	"strings"
	"time"
)

// Folder is a local directory whose media is synchronised.
type Folder struct {
	// ID is the unique identifier.
	ID string

	// Name is a human-readable label.
	Name string

	// Path is the directory on disk.
	Path string

	// MediaType selects which files are uploaded.
	MediaType MediaType

	// Topic is an optional destination thread identifier passed to the transport.
	Topic string

	// Syncing is true when the folder takes part in sync cycles.
	Syncing bool

	// CreatedAt is when the folder was added.
	CreatedAt time.Time
}

// Validate checks the folder fields that do not need the filesystem.
func (f *Folder) Validate() error {
	if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Path) == "" {
		return ErrInvalidInput
	}
	if !f.MediaType.IsValid() {
		return ErrInvalidInput
	}
	return nil
}
