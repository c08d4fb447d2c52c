package auth

import (
	"errors"
	"fmt"
)

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrAlreadyExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is not active")

	// ErrUnknownAccount and ErrWrongPassword both satisfy
	// errors.Is(err, ErrInvalidCredentials).
	ErrUnknownAccount = fmt.Errorf("%w: account not found", ErrInvalidCredentials)
	ErrWrongPassword  = fmt.Errorf("%w: wrong password", ErrInvalidCredentials)
)
