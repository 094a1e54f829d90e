// Package repository declares the storage contract for snippets.
// The sqlite subpackage is the only implementation; the service layer and its
// tests depend on this interface rather than on the concrete type.
package repository

import (
	"context"

	"github.com/sakif/snippet-manager/internal/model"
)

// SnippetRepository is one statement per method. None of them retries, and
// none applies partially.
type SnippetRepository interface {
	// Create inserts a snippet and returns the id the store assigned to it.
	Create(ctx context.Context, snippet *model.Snippet) (int64, error)
	// List returns every snippet, ascending by id. Never nil.
	List(ctx context.Context) ([]model.Snippet, error)
	// Update rewrites title, code, language, tags and updated_at. An unknown
	// id is not an error.
	Update(ctx context.Context, snippet *model.Snippet) error
	// Delete removes a snippet. An unknown id is not an error.
	Delete(ctx context.Context, id int64) error
	// Search returns snippets whose title, code or tags contain query.
	Search(ctx context.Context, query string) ([]model.Snippet, error)
	// ToggleFavorite flips is_favorite and returns the new value.
	// Returns apperror.ErrNotFound for an unknown id.
	ToggleFavorite(ctx context.Context, id int64) (bool, error)
}
