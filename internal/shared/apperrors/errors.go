package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across modules. Usecases wrap these with context via
// fmt.Errorf("...: %w", err) and transport layers map them onto HTTP statuses.
var (
	// ErrUnauthenticated covers missing or invalid credentials and session tokens.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden covers authenticated actors touching resources they do not own.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation covers malformed or missing mutation fields. Mutations
	// failing validation are never committed.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound covers absent referenced entities.
	ErrNotFound = errors.New("not found")
	// ErrUpstream covers persistence and object-storage collaborator failures.
	ErrUpstream = errors.New("upstream collaborator error")
)

// Validationf wraps ErrValidation with a formatted reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound with a formatted reason.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Upstreamf wraps ErrUpstream with a formatted reason and cause.
func Upstreamf(cause error, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstream, fmt.Sprintf(format, args...), cause)
}
