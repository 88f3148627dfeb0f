package uploader

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driven"
)

// FoldersAvailable is satisfied when at least one syncing folder exists on disk.
// It keeps the periodic trigger from starting empty cycles while removable
// storage is unmounted.
func FoldersAvailable(folders driven.FolderStore) driven.Constraint {
	return driven.ConstraintFunc(func(ctx context.Context) error {
		list, err := folders.List(ctx)
		if err != nil {
			return err
		}
		syncing := 0
		for _, f := range list {
			if !f.Syncing {
				continue
			}
			syncing++
			if info, err := os.Stat(f.Path); err == nil && info.IsDir() {
				return nil
			}
		}
		if syncing == 0 {
			return errors.New("no folders enabled for sync")
		}
		return fmt.Errorf("none of %d syncing folders is available", syncing)
	})
}

// NetworkCheck reports whether the current connection is unmetered (Wi-Fi).
type NetworkCheck func(ctx context.Context) (unmetered bool, err error)

// NetworkAllowed enforces a network policy through check.
// A nil check cannot tell connection types apart, so every policy passes.
func NetworkAllowed(policy domain.NetworkPolicy, check NetworkCheck) driven.Constraint {
	return driven.ConstraintFunc(func(ctx context.Context) error {
		if policy != domain.NetworkWiFiOnly || check == nil {
			return nil
		}
		unmetered, err := check(ctx)
		if err != nil {
			return fmt.Errorf("check network: %w", err)
		}
		if !unmetered {
			return fmt.Errorf("policy %s requires an unmetered connection", policy)
		}
		return nil
	})
}
