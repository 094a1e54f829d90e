package handler

// RESPONSE HELPERS:
// Every JSON body leaves through writeJSON, and every REST error through
// writeError, so status codes and error shapes stay consistent:
//   {"error": "not_found", "message": "snippet not found with id 12"}
//
// The invoke bridge (invoke.go) has its own envelope because the UI shell
// expects failures as a bare message string.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/snippet-manager/internal/apperror"
)

// ErrorResponse is the REST error body.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"` // Human-readable description
}

// writeJSON sends data as JSON with the given status code.
// Headers and status must be written before the body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status.
//
//	ErrValidation → 400
//	ErrNotFound   → 404
//	anything else → 500 with a generic message
//
// Store errors fall in the last bucket: the driver text can contain SQL and
// file paths, which stay in the server log.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError

	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrValidation):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: appErr.Message,
			})
			return
		case errors.Is(err, apperror.ErrNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: appErr.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
