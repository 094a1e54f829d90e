package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/snippet-manager/internal/apperror"
	"github.com/sakif/snippet-manager/internal/model"
	"github.com/sakif/snippet-manager/internal/repository"
)

// Compile-time check that *DB implements repository.SnippetRepository.
var _ repository.SnippetRepository = (*DB)(nil)

const selectColumns = `SELECT id, title, code, language, tags, is_favorite, created_at, updated_at FROM snippets`

// Create inserts a new snippet and returns the store-assigned id.
//
// The caller supplies both timestamps. is_favorite is left to the column
// default (0), whatever the struct holds. snippet.ID is set on success so the
// caller's struct reflects what was stored.
func (db *DB) Create(ctx context.Context, snippet *model.Snippet) (int64, error) {
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO snippets (title, code, language, tags, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		snippet.Title,
		snippet.Code,
		snippet.Language,
		snippet.Tags,
		snippet.CreatedAt,
		snippet.UpdatedAt,
	)
	if err != nil {
		return 0, apperror.Store("sqlite: creating snippet", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, apperror.Store("sqlite: reading inserted id", err)
	}

	snippet.ID = id
	snippet.IsFavorite = false
	return id, nil
}

// List returns every snippet, oldest id first.
//
// SelectContext runs the query, scans each row into a model.Snippet by db tag
// and closes the rows for us.
func (db *DB) List(ctx context.Context) ([]model.Snippet, error) {
	snippets := []model.Snippet{}
	if err := db.conn.SelectContext(ctx, &snippets, selectColumns+` ORDER BY id ASC`); err != nil {
		return nil, apperror.Store("sqlite: listing snippets", err)
	}
	return snippets, nil
}

// Update rewrites the editable fields of the row with snippet.ID.
//
// created_at and is_favorite are not in the SET list, so whatever the caller
// put in those fields (the command surface sends an empty created_at) never
// reaches the row. An id with no row affects nothing and returns nil.
func (db *DB) Update(ctx context.Context, snippet *model.Snippet) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE snippets
		 SET title = ?, code = ?, language = ?, tags = ?, updated_at = ?
		 WHERE id = ?`,
		snippet.Title,
		snippet.Code,
		snippet.Language,
		snippet.Tags,
		snippet.UpdatedAt,
		snippet.ID,
	)
	if err != nil {
		return apperror.Store(fmt.Sprintf("sqlite: updating snippet %d", snippet.ID), err)
	}
	return nil
}

// Delete removes a snippet. Deleting an id with no row is a no-op.
func (db *DB) Delete(ctx context.Context, id int64) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM snippets WHERE id = ?`, id); err != nil {
		return apperror.Store(fmt.Sprintf("sqlite: deleting snippet %d", id), err)
	}
	return nil
}

// Search matches query as a substring of title, code or tags.
//
// The pattern is "%" + query + "%" with no ESCAPE clause: a '%' or '_' typed
// by the user is a LIKE wildcard, not a literal. SQLite's LIKE folds ASCII
// case only.
func (db *DB) Search(ctx context.Context, query string) ([]model.Snippet, error) {
	pattern := "%" + query + "%"

	snippets := []model.Snippet{}
	err := db.conn.SelectContext(ctx, &snippets,
		selectColumns+`
		 WHERE title LIKE ? OR code LIKE ? OR tags LIKE ?
		 ORDER BY id ASC`,
		pattern, pattern, pattern,
	)
	if err != nil {
		return nil, apperror.Store("sqlite: searching snippets", err)
	}
	return snippets, nil
}

// ToggleFavorite flips is_favorite in one statement and reads the result back
// with RETURNING. No returned row means no such id.
func (db *DB) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	var favorite bool
	err := db.conn.GetContext(ctx, &favorite,
		`UPDATE snippets SET is_favorite = NOT is_favorite WHERE id = ? RETURNING is_favorite`,
		id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, apperror.NotFound("snippet", id)
		}
		return false, apperror.Store(fmt.Sprintf("sqlite: toggling favorite on snippet %d", id), err)
	}
	return favorite, nil
}
