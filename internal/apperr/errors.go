// Package apperr defines the error taxonomy shared by all layers.
//
// The repository surfaces exactly three kinds of failure: bad input
// (ErrValidation), a note not being in the state an operation requires
// (ErrNotFound), and the persistence service misbehaving (ErrStore).
// Callers match with errors.Is; wrapping preserves the sentinel.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrStore      = errors.New("store unavailable")
)

// Validation wraps a caller-input problem so errors.Is(err, ErrValidation) holds.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// NotFound wraps a missing-or-wrong-state failure for the given id.
func NotFound(id string) error {
	return fmt.Errorf("%w: note %q", ErrNotFound, id)
}

// Store wraps a persistence-service failure.
func Store(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStore, op, err)
}
