// Package command exposes the snippet service as named, independently
// invocable commands: get_snippets, create_snippet, update_snippet,
// delete_snippet, search_snippets and toggle_favorite.
//
// Arguments arrive as a JSON object, results leave as plain Go values ready to
// be JSON-encoded, and every failure leaves as an *Error holding nothing but a
// display string. Shells (the HTTP bridge, the CLI) never see the typed errors
// underneath.
package command

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/snippet-manager/internal/model"
	"github.com/sakif/snippet-manager/internal/service"
)

// Command names, as the UI shell sends them.
const (
	GetSnippets    = "get_snippets"
	CreateSnippet  = "create_snippet"
	UpdateSnippet  = "update_snippet"
	DeleteSnippet  = "delete_snippet"
	SearchSnippets = "search_snippets"
	ToggleFavorite = "toggle_favorite"
)

// Error is the only failure type Invoke returns. Message is opaque text for
// display; there is no code to branch on.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func fail(err error) *Error { return &Error{Message: err.Error()} }

// UnknownCommandError is returned by Invoke for a name with no handler.
// Transports use it to answer 404; its text is as opaque as any other.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string { return "unknown command: " + e.Name }

// handlerFunc decodes its own arguments and runs one service call.
type handlerFunc func(ctx context.Context, args json.RawMessage) (any, error)

// Dispatcher maps command names to service calls.
type Dispatcher struct {
	svc      *service.SnippetService
	logger   *slog.Logger
	handlers map[string]handlerFunc
}

// NewDispatcher registers the six commands against svc.
func NewDispatcher(svc *service.SnippetService, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{svc: svc, logger: logger}
	d.handlers = map[string]handlerFunc{
		GetSnippets:    d.getSnippets,
		CreateSnippet:  d.createSnippet,
		UpdateSnippet:  d.updateSnippet,
		DeleteSnippet:  d.deleteSnippet,
		SearchSnippets: d.searchSnippets,
		ToggleFavorite: d.toggleFavorite,
	}
	return d
}

// Names returns the registered command names, sorted.
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named command. args is a JSON object; nil or empty means
// "no arguments". The returned error, when non-nil, is always *Error or
// *UnknownCommandError.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	h, ok := d.handlers[name]
	if !ok {
		return nil, &UnknownCommandError{Name: name}
	}

	// Every invocation gets its own id so its log lines can be grouped.
	invocationID := xid.New().String()
	start := time.Now()

	result, err := h(ctx, args)

	attrs := []any{
		slog.String("command", name),
		slog.String("invocation", invocationID),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		d.logger.Warn("command failed", append(attrs, slog.String("error", err.Error()))...)
		return nil, fail(err)
	}
	d.logger.Debug("command completed", attrs...)
	return result, nil
}

// decode unmarshals args into dst. Missing arguments decode as zero values,
// matching the "no input validation" contract.
func decode(args json.RawMessage, dst any) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, dst); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// Argument shapes. Field names match what the UI shell passes to invoke().

type snippetArgs struct {
	Title    string `json:"title"`
	Code     string `json:"code"`
	Language string `json:"language"`
	Tags     string `json:"tags"`
}

type updateArgs struct {
	ID int64 `json:"id"`
	snippetArgs
}

type idArgs struct {
	ID int64 `json:"id"`
}

type searchArgs struct {
	Query string `json:"query"`
}

func (d *Dispatcher) getSnippets(ctx context.Context, _ json.RawMessage) (any, error) {
	return d.svc.List(ctx)
}

func (d *Dispatcher) createSnippet(ctx context.Context, raw json.RawMessage) (any, error) {
	var a snippetArgs
	if err := decode(raw, &a); err != nil {
		return nil, err
	}
	return d.svc.Create(ctx, a.Title, a.Code, a.Language, a.Tags)
}

func (d *Dispatcher) updateSnippet(ctx context.Context, raw json.RawMessage) (any, error) {
	var a updateArgs
	if err := decode(raw, &a); err != nil {
		return nil, err
	}
	return nil, d.svc.Update(ctx, a.ID, a.Title, a.Code, a.Language, a.Tags)
}

func (d *Dispatcher) deleteSnippet(ctx context.Context, raw json.RawMessage) (any, error) {
	var a idArgs
	if err := decode(raw, &a); err != nil {
		return nil, err
	}
	return nil, d.svc.Delete(ctx, a.ID)
}

func (d *Dispatcher) searchSnippets(ctx context.Context, raw json.RawMessage) (any, error) {
	var a searchArgs
	if err := decode(raw, &a); err != nil {
		return nil, err
	}
	return d.svc.Search(ctx, a.Query)
}

func (d *Dispatcher) toggleFavorite(ctx context.Context, raw json.RawMessage) (any, error) {
	var a idArgs
	if err := decode(raw, &a); err != nil {
		return nil, err
	}
	return d.svc.ToggleFavorite(ctx, a.ID)
}

// Typed helpers for in-process shells (the CLI). They go through Invoke so
// the same logging and string-error conversion applies.

// List invokes get_snippets.
func (d *Dispatcher) List(ctx context.Context) ([]model.Snippet, error) {
	return invokeAs[[]model.Snippet](ctx, d, GetSnippets, nil)
}

// Search invokes search_snippets.
func (d *Dispatcher) Search(ctx context.Context, query string) ([]model.Snippet, error) {
	return invokeAs[[]model.Snippet](ctx, d, SearchSnippets, searchArgs{Query: query})
}

// Create invokes create_snippet.
func (d *Dispatcher) Create(ctx context.Context, title, code, language, tags string) (int64, error) {
	return invokeAs[int64](ctx, d, CreateSnippet, snippetArgs{title, code, language, tags})
}

// Update invokes update_snippet.
func (d *Dispatcher) Update(ctx context.Context, id int64, title, code, language, tags string) error {
	_, err := d.invokeWith(ctx, UpdateSnippet, updateArgs{ID: id, snippetArgs: snippetArgs{title, code, language, tags}})
	return err
}

// Delete invokes delete_snippet.
func (d *Dispatcher) Delete(ctx context.Context, id int64) error {
	_, err := d.invokeWith(ctx, DeleteSnippet, idArgs{ID: id})
	return err
}

// ToggleFavorite invokes toggle_favorite.
func (d *Dispatcher) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	return invokeAs[bool](ctx, d, ToggleFavorite, idArgs{ID: id})
}

func (d *Dispatcher) invokeWith(ctx context.Context, name string, args any) (any, error) {
	var raw json.RawMessage
	if args != nil {
		b, err := json.Marshal(args)
		if err != nil {
			return nil, fail(err)
		}
		raw = b
	}
	return d.Invoke(ctx, name, raw)
}

func invokeAs[T any](ctx context.Context, d *Dispatcher, name string, args any) (T, error) {
	var zero T
	result, err := d.invokeWith(ctx, name, args)
	if err != nil {
		return zero, err
	}
	v, ok := result.(T)
	if !ok {
		return zero, &Error{Message: fmt.Sprintf("%s: unexpected result type %T", name, result)}
	}
	return v, nil
}
