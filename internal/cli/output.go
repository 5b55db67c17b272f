package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/roach88/sightline/internal/change"
	"github.com/roach88/sightline/internal/entity"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failure (not found, collision, validation)
	ExitCommandError = 2 // Command error (invalid paths, database not found, etc.)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
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

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "NOT_FOUND", "INVALID_REQUEST", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// PrintEntity writes one entity in the configured format.
func (f *OutputFormatter) PrintEntity(e entity.Entity) error {
	if f.Format == "json" {
		return f.Success(e)
	}

	fmt.Fprintf(f.Writer, "%s/%s  %s\n", e.EntityType, e.EntityID, e.Name)
	names := make([]string, 0, len(e.Attributes))
	for name := range e.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		raw, err := json.Marshal(e.Attributes[name])
		if err != nil {
			return err
		}
		fmt.Fprintf(f.Writer, "  %s = %s\n", name, raw)
	}
	fmt.Fprintf(f.Writer, "  created %s, updated %s\n",
		formatMillis(e.CreatedAt), formatMillis(e.UpdatedAt))
	return nil
}

// PrintEntities writes a result set in the configured format.
func (f *OutputFormatter) PrintEntities(entities []entity.Entity) error {
	if f.Format == "json" {
		return f.Success(entities)
	}

	for _, e := range entities {
		if err := f.PrintEntity(e); err != nil {
			return err
		}
	}
	fmt.Fprintf(f.Writer, "%d entities\n", len(entities))
	return nil
}

// PrintEvents writes the change events a command produced. Text output is
// one line per event.
func (f *OutputFormatter) PrintEvents(events []change.Event) error {
	if len(events) == 0 {
		return nil
	}
	if f.Format == "json" {
		summaries := make([]map[string]string, 0, len(events))
		for _, ev := range events {
			summaries = append(summaries, map[string]string{
				"change": eventKind(ev),
				"entity": eventEntity(ev).Key().String(),
			})
		}
		return f.Success(summaries)
	}

	for _, ev := range events {
		fmt.Fprintf(f.Writer, "%s %s\n", strings.ToUpper(eventKind(ev)), eventEntity(ev).Key())
	}
	return nil
}

func eventKind(ev change.Event) string {
	switch ev.(type) {
	case change.Created:
		return "created"
	case change.Updated:
		return "updated"
	case change.Deleted:
		return "deleted"
	}
	return "unknown"
}

func eventEntity(ev change.Event) entity.Entity {
	switch e := ev.(type) {
	case change.Created:
		return e.Entity
	case change.Updated:
		return e.Latest
	case change.Deleted:
		return e.Entity
	}
	return entity.Entity{}
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
