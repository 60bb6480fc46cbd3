package service

import (
	"errors"

	"github.com/aussiebroadwan/kelas/internal/identity/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountDisabled    = errors.New("account_disabled")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrUsernameTaken      = errors.New("username_taken")
	ErrAccountNotFound    = errors.New("account_not_found")

	// ErrCreationFailed wraps a store failure during account creation
	// that is not a username conflict.
	ErrCreationFailed = errors.New("creation_failed")
)

// ValidationError carries every field failure of a rejected payload.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Fields.Error()
}

// invalid returns nil when errs is empty and a *ValidationError otherwise.
func invalid(errs validation.Errors) error {
	if errs.Empty() {
		return nil
	}
	return &ValidationError{Fields: errs}
}
