package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/snippet-manager/internal/command"
)

// maxInvokeBody caps the argument payload. Snippets are short, but a pasted
// file should still fit.
const maxInvokeBody = 8 << 20

// Invoker runs a named command. *command.Dispatcher satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, name string, args json.RawMessage) (any, error)
}

// InvokeHandler is the bridge between the UI shell and the command surface.
type InvokeHandler struct {
	invoker Invoker
	logger  *slog.Logger
}

// NewInvokeHandler creates a new InvokeHandler.
func NewInvokeHandler(invoker Invoker, logger *slog.Logger) *InvokeHandler {
	return &InvokeHandler{invoker: invoker, logger: logger}
}

// Bridge envelopes:
//
//	{"result": [...]}           success (result may be null)
//	{"error": "message text"}   failure
type invokeResponse struct {
	Result any `json:"result"`
}

type invokeError struct {
	Error string `json:"error"`
}

// HandleInvoke runs {command} with the request body as its arguments.
//
// HTTP: POST /invoke/{command}
// REQUEST BODY: a JSON object of arguments, e.g. {"id": 3}; may be empty.
//
// Status codes: 200 success, 400 command failure, 404 unknown command,
// 413 body too large.
func (h *InvokeHandler) HandleInvoke(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "command")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxInvokeBody))
	if err != nil {
		h.logger.Warn("reading invoke body failed",
			slog.String("command", name),
			slog.String("error", err.Error()),
		)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, invokeError{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, invokeError{Error: "could not read request body"})
		return
	}

	var args json.RawMessage
	if len(body) > 0 {
		args = body
	}

	result, err := h.invoker.Invoke(r.Context(), name, args)
	if err != nil {
		var unknown *command.UnknownCommandError
		if errors.As(err, &unknown) {
			writeJSON(w, http.StatusNotFound, invokeError{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, invokeError{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, invokeResponse{Result: result})
}
