// Package apperr defines the error kinds shared by every layer of the service.
// Callers branch on kind with errors.Is against the sentinels below.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrQuotaExceeded   = errors.New("quota exceeded")
	ErrConflict        = errors.New("conflict")
	ErrTooManyAttempts = errors.New("too many attempts")
	ErrStorage         = errors.New("storage error")
)

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Unauthenticated(reason string) error {
	return fmt.Errorf("%w: %s", ErrUnauthenticated, reason)
}

func Unauthorized(reason string) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, reason)
}

// NotFound reports a missing entity, e.g. NotFound("listing", id).
func NotFound(entity, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, entity, id)
}

func QuotaExceeded(limit int) error {
	return fmt.Errorf("%w: an account may own at most %d listings", ErrQuotaExceeded, limit)
}

func Conflict(reason string) error {
	return fmt.Errorf("%w: %s", ErrConflict, reason)
}

func TooManyAttempts(retryAfter string) error {
	return fmt.Errorf("%w: retry in %s", ErrTooManyAttempts, retryAfter)
}

// Storage wraps a backend failure; the cause stays reachable through errors.Is/As.
func Storage(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// Kind returns the sentinel err belongs to, or nil for unclassified errors.
func Kind(err error) error {
	for _, kind := range []error{
		ErrValidation,
		ErrUnauthenticated,
		ErrUnauthorized,
		ErrNotFound,
		ErrQuotaExceeded,
		ErrConflict,
		ErrTooManyAttempts,
		ErrStorage,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
