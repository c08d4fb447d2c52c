package requests

import "errors"

var (
	// ErrRequestNotFound covers both unknown ids and requests already decided.
	ErrRequestNotFound   = errors.New("request not found or already processed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMissingFields     = errors.New("missing required fields: studentName, college, certificateType, generatedLetter")
	ErrMissingDecider    = errors.New("approvedBy field is required")
)
