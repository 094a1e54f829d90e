// Package handler contains the HTTP handlers of the loopback transport.
//
// Two surfaces share the same service:
//   - InvokeHandler: POST /invoke/{command}, the bridge the UI shell uses.
//   - SnippetHandler: a REST mirror under /api/snippets for scripts and curl.
//
// Handlers parse the request, call the service, and write the response.
// No business rules live here.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/snippet-manager/internal/apperror"
	"github.com/sakif/snippet-manager/internal/model"
)

// SnippetService is what the REST handler needs from the service layer.
// *service.SnippetService satisfies it.
type SnippetService interface {
	List(ctx context.Context) ([]model.Snippet, error)
	Create(ctx context.Context, title, code, language, tags string) (int64, error)
	Update(ctx context.Context, id int64, title, code, language, tags string) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, query string) ([]model.Snippet, error)
	ToggleFavorite(ctx context.Context, id int64) (bool, error)
}

// SnippetHandler serves /api/snippets.
type SnippetHandler struct {
	svc    SnippetService
	logger *slog.Logger
}

// NewSnippetHandler creates a new SnippetHandler.
func NewSnippetHandler(svc SnippetService, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{svc: svc, logger: logger}
}

// snippetRequest is the body of POST and PUT.
type snippetRequest struct {
	Title    string `json:"title"`
	Code     string `json:"code"`
	Language string `json:"language"`
	Tags     string `json:"tags"`
}

// HandleList returns all snippets, or the search results when ?q= is present.
//
// HTTP: GET /api/snippets
// HTTP: GET /api/snippets?q=foo
//
// `?q=` with an empty value is still a search, and matches everything.
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	var (
		snippets []model.Snippet
		err      error
	)
	if q, ok := r.URL.Query()["q"]; ok {
		snippets, err = h.svc.Search(r.Context(), q[0])
	} else {
		snippets, err = h.svc.List(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippets)
}

// HandleCreate stores a new snippet and answers 201 with its id.
//
// HTTP: POST /api/snippets
// REQUEST BODY: {"title":"...","code":"...","language":"go","tags":"a, b"}
// RESPONSE: {"id": 7}
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req snippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid snippet JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	id, err := h.svc.Create(r.Context(), req.Title, req.Code, req.Language, req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// HandleUpdate rewrites snippet {id}. An unknown id still answers 204.
//
// HTTP: PUT /api/snippets/{id}
func (h *SnippetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req snippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	if err := h.svc.Update(r.Context(), id, req.Title, req.Code, req.Language, req.Tags); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete removes snippet {id}. An unknown id still answers 204.
//
// HTTP: DELETE /api/snippets/{id}
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleFavorite flips the favorite flag. Unknown id → 404.
//
// HTTP: POST /api/snippets/{id}/favorite
// RESPONSE: {"is_favorite": true}
func (h *SnippetHandler) HandleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	favorite, err := h.svc.ToggleFavorite(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_favorite": favorite})
}

// parseID reads the {id} URL parameter. On failure it has already written a
// 400 response.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, apperror.ValidationFailed("id", "snippet id must be an integer"))
		return 0, false
	}
	return id, true
}
