package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/memento/internal/memento"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operational failure (stale bookmark, unreadable payload)
	ExitCommandError = 2 // Command error (bad arguments, missing files, invalid catalog)
)

// Error codes reported in CLI output.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeInvalidArgs = "E002" // Malformed argument or flag value
	ErrCodeConfig      = "E003" // Configuration could not be loaded
	ErrCodeLoadFailed  = "E004" // Catalog load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeStore       = "E006" // Entity store error
	ErrCodeWriteFailed = "E007" // File write error

	ErrCodeMementoInvalid       = "E201" // Malformed memento or token
	ErrCodeUnresolvedType       = "E202" // Logical type unknown to this catalog
	ErrCodeSerializationFailure = "E203" // Payload could not be produced or read
	ErrCodeLookupMiss           = "E204" // Bookmark no longer resolves
	ErrCodeNotRecreatable       = "E205" // No recreate strategy applies
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

// mementoErrorCode maps memento errors to CLI codes and exit codes.
// Lookup misses and unreadable payloads are operational failures; everything
// else is a command error.
func mementoErrorCode(err error) (string, int) {
	code, ok := memento.CodeOf(err)
	if !ok {
		return ErrCodeGeneric, ExitFailure
	}
	switch code {
	case memento.ErrCodeInvalidArgument:
		return ErrCodeMementoInvalid, ExitCommandError
	case memento.ErrCodeUnresolvedType:
		return ErrCodeUnresolvedType, ExitCommandError
	case memento.ErrCodeSerializationFailure:
		return ErrCodeSerializationFailure, ExitFailure
	case memento.ErrCodeLookupMiss:
		return ErrCodeLookupMiss, ExitFailure
	case memento.ErrCodeNotRecreatable:
		return ErrCodeNotRecreatable, ExitCommandError
	}
	return ErrCodeGeneric, ExitFailure
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
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E204", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Result outputs data as JSON, or calls text to render it for humans.
func (f *OutputFormatter) Result(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return f.Success(data)
	}
	text(f.Writer)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
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

// Fail reports err under code and returns the matching ExitError.
func (f *OutputFormatter) Fail(exitCode int, code, message string, err error) error {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %v", message, err)
	}
	_ = f.Error(code, msg, nil)
	return WrapExitError(exitCode, fmt.Sprintf("%s: %s", code, message), err)
}

// FailMemento reports a memento error with its mapped code.
func (f *OutputFormatter) FailMemento(message string, err error) error {
	code, exit := mementoErrorCode(err)
	return f.Fail(exit, code, message, err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
