package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrBusy", ErrBusy},
		{"ErrStaleHandle", ErrStaleHandle},
		{"ErrUploaderFailure", ErrUploaderFailure},
		{"ErrCancelled", ErrCancelled},
		{"ErrClosed", ErrClosed},
		{"ErrConstraintNotMet", ErrConstraintNotMet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrUploaderFailure_Wrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("%w: %w", ErrUploaderFailure, cause)

	assert.True(t, errors.Is(err, ErrUploaderFailure))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrBusy))
}

func TestErrBusy_DistinctFromStale(t *testing.T) {
	assert.False(t, errors.Is(ErrBusy, ErrStaleHandle))
	assert.Equal(t, "sync already running", ErrBusy.Error())
	assert.Equal(t, "stale run handle", ErrStaleHandle.Error())
}
