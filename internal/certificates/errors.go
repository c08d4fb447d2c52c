package certificates

import (
	"errors"
	"fmt"
)

var (
	// ErrDirectoryUnavailable means the output directory could not be created.
	ErrDirectoryUnavailable = errors.New("certificate directory unavailable")
	// ErrStreamWrite means the document bytes could not be committed to disk.
	ErrStreamWrite = errors.New("certificate stream write failed")
	// ErrInvalidRequest means the render request failed boundary validation.
	ErrInvalidRequest = errors.New("invalid render request")
)

// GenerationError is returned by every failing render call. Reason is safe to
// show to the caller; Err matches one of the package sentinels with errors.Is.
type GenerationError struct {
	Op     string
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	return "PDF generation failed: " + e.Reason
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func newGenerationError(op string, kind, cause error) *GenerationError {
	return &GenerationError{
		Op:     op,
		Reason: cause.Error(),
		Err:    fmt.Errorf("%w: %w", kind, cause),
	}
}
