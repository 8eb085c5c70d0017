package errors

import (
	"errors"
	"fmt"
)

// Common error types for the console and its client core
var (
	// Session errors
	ErrNoSession        = errors.New("no active session")
	ErrSessionExpired   = errors.New("session expired")
	ErrCorruptSession   = errors.New("stored session is corrupt")
	ErrNoRefreshToken   = errors.New("no refresh token available")
	ErrIncompleteLogin  = errors.New("login response is missing session fields")
	ErrInvalidStorage   = errors.New("invalid session storage")
	ErrStorageKeyAbsent = errors.New("storage key not found")

	// Request errors
	ErrTransport  = errors.New("request could not be completed")
	ErrBadPayload = errors.New("response payload is not valid JSON")

	// Input errors
	ErrInvalidInput = errors.New("invalid input")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
