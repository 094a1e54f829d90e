package apperror

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	driverErr := errors.New("database is locked")

	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("snippet", 42),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("id", "id must be a number"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Store wraps ErrStore",
			err:       Store("listing snippets", driverErr),
			target:    ErrStore,
			wantMatch: true,
		},
		{
			name:      "Store also reaches the cause",
			err:       Store("listing snippets", driverErr),
			target:    driverErr,
			wantMatch: true,
		},
		{
			name:      "StoreUnavailable reaches the cause",
			err:       StoreUnavailable("x.db", fs.ErrPermission),
			target:    fs.ErrPermission,
			wantMatch: true,
		},
		{
			name:      "StoreUnavailable is not ErrStore",
			err:       StoreUnavailable("x.db", fs.ErrPermission),
			target:    ErrStore,
			wantMatch: false,
		},
		{
			name:      "NotFound does NOT match ErrStore",
			err:       NotFound("snippet", 42),
			target:    ErrStore,
			wantMatch: false,
		},
		{
			name:      "wrapped twice still matches",
			err:       fmt.Errorf("toggling favorite: %w", NotFound("snippet", 1)),
			target:    ErrNotFound,
			wantMatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("snippet", 7),
			wantMessage: "snippet not found with id 7",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("id", "id is required"),
			wantMessage: "id is required",
		},
		{
			name:        "Store prefixes the operation",
			err:         Store("deleting snippet 3", errors.New("disk I/O error")),
			wantMessage: "deleting snippet 3: disk I/O error",
		},
		{
			name:        "StoreUnavailable names the path",
			err:         StoreUnavailable("snippets.db", errors.New("unable to open database file")),
			wantMessage: "opening store snippets.db: unable to open database file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("snippet", 1)
	unwrapped := err.Unwrap()

	if len(unwrapped) != 1 || unwrapped[0] != ErrNotFound {
		t.Errorf("Unwrap() = %v, want [%v]", unwrapped, ErrNotFound)
	}
}

func TestErrorsAs(t *testing.T) {
	var wrapped error = fmt.Errorf("outer: %w", ValidationFailed("query", "bad query"))

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As should find the *AppError")
	}
	if appErr.Field != "query" {
		t.Errorf("Field = %q, want %q", appErr.Field, "query")
	}
}
