// Package apperror defines the error taxonomy shared by every layer.
//
// Each kind has a sentinel (ErrNotFound, ErrStore, ...) that callers check with
// errors.Is, and a constructor that builds an *AppError carrying a
// human-readable Message. Store errors also carry the driver error as Cause so
// that errors.Is/As can still reach it.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrStore            = errors.New("store error")
	ErrStoreUnavailable = errors.New("store unavailable")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying driver/OS error
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel and the cause, so errors.Is(err, ErrStore)
// and errors.Is(err, sql.ErrConnDone) both work on the same value.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %d", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Store wraps a failed statement. op reads like "creating snippet".
func Store(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrStore,
		Message: fmt.Sprintf("%s: %v", op, cause),
		Cause:   cause,
	}
}

// StoreUnavailable is returned when the database file cannot be opened or
// its schema cannot be created. It is fatal at startup.
func StoreUnavailable(path string, cause error) *AppError {
	return &AppError{
		Err:     ErrStoreUnavailable,
		Message: fmt.Sprintf("opening store %s: %v", path, cause),
		Cause:   cause,
	}
}
