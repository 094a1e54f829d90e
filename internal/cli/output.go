package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sakif/snippet-manager/internal/model"
)

// Exit codes for CLI commands.
const (
	ExitSuccess = 0 // Successful execution
	ExitFailure = 1 // The command ran and failed (store error, unknown id, ...)
	ExitUsage   = 2 // Bad flags or arguments, invalid configuration
)

// ExitError carries the exit code a failed command should end the process
// with.
type ExitError struct {
	Code    int    // ExitFailure or ExitUsage
	Message string // Error message; may be empty when Err says it all
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	switch {
	case e.Message == "" && e.Err != nil:
		return e.Err.Error()
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// failure marks err as a command failure. Command errors are already
// display strings, so no prefix is added.
func failure(err error) *ExitError {
	return &ExitError{Code: ExitFailure, Err: err}
}

// usageError marks a problem with how the command was called.
func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: ExitUsage, Message: fmt.Sprintf(format, args...)}
}

// GetExitCode extracts the exit code from an error.
// Errors that are not an ExitError come from cobra's own flag and argument
// parsing, so they count as usage errors.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUsage
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // text-mode errors go here (defaults to Writer)
}

// CLIResponse is the JSON envelope for every command.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error structure for CLI responses. Command errors are
// opaque strings, so there is nothing but the message.
type CLIError struct {
	Message string `json:"message"`
}

// Success outputs data in the configured format. In text mode render writes
// the human-readable form; a nil render prints nothing.
func (f *OutputFormatter) Success(data any, render func(w io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	if render != nil {
		render(f.Writer)
	}
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(message string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Message: message},
		})
	}

	fmt.Fprintf(f.errWriter(), "Error: %s\n", message)
	return nil
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// formatSnippet renders one list line:
//
//	#3 [go] http server (net, web) *
//
// Tags appear only when present; the star marks a favorite.
func formatSnippet(s model.Snippet) string {
	line := fmt.Sprintf("#%d [%s] %s", s.ID, s.Language, s.Title)
	if tags := model.SplitTags(s.Tags); len(tags) > 0 {
		line += " (" + model.JoinTags(tags) + ")"
	}
	if s.IsFavorite {
		line += " *"
	}
	return line
}

func renderSnippets(snippets []model.Snippet) func(io.Writer) {
	return func(w io.Writer) {
		for _, s := range snippets {
			fmt.Fprintln(w, formatSnippet(s))
		}
	}
}

func renderLine(format string, args ...any) func(io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintf(w, format+"\n", args...)
	}
}
