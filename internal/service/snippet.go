// Package service holds the shared handle every shell talks to.
//
// SnippetService owns the repository behind one mutex. Each method takes the
// lock, makes exactly one repository call, and releases it, so at most one
// statement reaches the store at a time no matter how many HTTP requests or
// goroutines arrive together.
//
// The service is built once in the composition root (internal/cli) and passed
// to whoever needs it. There is no package-level instance.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sakif/snippet-manager/internal/model"
	"github.com/sakif/snippet-manager/internal/repository"
)

// TimestampLayout is how created_at and updated_at are written.
const TimestampLayout = time.RFC3339Nano

// SnippetService serializes access to the store and stamps timestamps.
// It does not validate input; empty titles and unknown languages go straight
// through to the store.
type SnippetService struct {
	mu     sync.Mutex
	repo   repository.SnippetRepository
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a SnippetService.
type Option func(*SnippetService)

// WithClock replaces time.Now. Tests use it to get fixed timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *SnippetService) { s.now = now }
}

// NewSnippetService creates a new SnippetService around repo.
func NewSnippetService(repo repository.SnippetRepository, logger *slog.Logger, opts ...Option) *SnippetService {
	s := &SnippetService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SnippetService) stamp() string {
	return s.now().UTC().Format(TimestampLayout)
}

// List returns every snippet.
func (s *SnippetService) List(ctx context.Context) ([]model.Snippet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snippets, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list snippets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing snippets: %w", err)
	}
	return snippets, nil
}

// Create stores a new snippet and returns its id.
//
// created_at and updated_at come from a single clock reading taken here, so a
// fresh snippet always has them equal.
func (s *SnippetService) Create(ctx context.Context, title, code, language, tags string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.stamp()
	snippet := &model.Snippet{
		Title:     title,
		Code:      code,
		Language:  language,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.repo.Create(ctx, snippet)
	if err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.Int64("id", id),
		slog.String("title", title),
	)
	return id, nil
}

// Update rewrites the editable fields of snippet id and bumps updated_at.
//
// CreatedAt is deliberately left empty: the store's UPDATE never targets that
// column. An id that does not exist is reported as success.
func (s *SnippetService) Update(ctx context.Context, id int64, title, code, language, tags string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snippet := &model.Snippet{
		ID:        id,
		Title:     title,
		Code:      code,
		Language:  language,
		Tags:      tags,
		UpdatedAt: s.stamp(),
	}

	if err := s.repo.Update(ctx, snippet); err != nil {
		s.logger.Error("failed to update snippet",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated", slog.Int64("id", id))
	return nil
}

// Delete removes snippet id. An unknown id is reported as success.
func (s *SnippetService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete snippet",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting snippet: %w", err)
	}

	s.logger.Info("snippet deleted", slog.Int64("id", id))
	return nil
}

// Search returns snippets whose title, code or tags contain query.
func (s *SnippetService) Search(ctx context.Context, query string) ([]model.Snippet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snippets, err := s.repo.Search(ctx, query)
	if err != nil {
		s.logger.Error("failed to search snippets",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("searching snippets: %w", err)
	}
	return snippets, nil
}

// ToggleFavorite flips the favorite flag of snippet id and returns the new
// value. Unlike Update and Delete, an unknown id is an error
// (apperror.ErrNotFound).
func (s *SnippetService) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	favorite, err := s.repo.ToggleFavorite(ctx, id)
	if err != nil {
		// Not found is a normal answer here, not worth an error-level line.
		s.logger.Warn("failed to toggle favorite",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return false, fmt.Errorf("toggling favorite: %w", err)
	}

	s.logger.Info("favorite toggled",
		slog.Int64("id", id),
		slog.Bool("favorite", favorite),
	)
	return favorite, nil
}
