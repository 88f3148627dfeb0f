package driven

import (
	"context"
	"errors"

	"github.com/custodia-labs/mediasync/internal/core/domain"
)

// Constraint reports whether external conditions allow a sync cycle to start.
// Battery and network policy live behind this hook.
type Constraint interface {
	// Ready returns nil when a cycle may start, or an error describing why not.
	Ready(ctx context.Context) error
}

// ConstraintFunc adapts a function to Constraint.
type ConstraintFunc func(ctx context.Context) error

// Ready calls f(ctx).
func (f ConstraintFunc) Ready(ctx context.Context) error {
	return f(ctx)
}

// CheckConstraints returns the first unmet constraint joined with
// domain.ErrConstraintNotMet. Nil entries are skipped.
func CheckConstraints(ctx context.Context, constraints []Constraint) error {
	for _, c := range constraints {
		if c == nil {
			continue
		}
		if err := c.Ready(ctx); err != nil {
			return errors.Join(domain.ErrConstraintNotMet, err)
		}
	}
	return nil
}
