// Package errors provides error types with actionable suggestions for the
// fondsnet-import pipeline. Errors carry contextual detail so a failed CI run
// can be diagnosed from the log alone.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors for use with errors.Is().
var (
	// ErrConfig indicates a configuration error.
	ErrConfig = errors.New("configuration error")
	// ErrSFTP indicates a failure while talking to the SFTP server.
	ErrSFTP = errors.New("sftp error")
	// ErrParse indicates the workbook could not be parsed.
	ErrParse = errors.New("parse error")
	// ErrValidation indicates the imported records failed validation.
	ErrValidation = errors.New("validation error")
	// ErrFixture indicates the fixture file could not be read or written.
	ErrFixture = errors.New("fixture error")
	// ErrS3 indicates an object storage failure.
	ErrS3 = errors.New("s3 error")
	// ErrGit indicates a git operation failure.
	ErrGit = errors.New("git error")
	// ErrGitHub indicates a GitHub API failure.
	ErrGitHub = errors.New("github error")
	// ErrNetwork indicates a network-related error.
	ErrNetwork = errors.New("network error")
	// ErrTimeout indicates a timeout occurred.
	ErrTimeout = errors.New("timeout error")
	// ErrNotFound indicates a resource was not found.
	ErrNotFound = errors.New("not found")
)

// ImportError is the base error type for pipeline errors.
// It wraps an underlying error and provides additional context.
type ImportError struct {
	// Kind is the category of error (e.g., ErrSFTP, ErrGitHub).
	Kind error
	// Message is the human-readable error message.
	Message string
	// Suggestion provides actionable advice for resolving the error.
	Suggestion string
	// Cause is the underlying error that caused this error.
	Cause error
	// Details provides additional context (e.g., remote path, branch name).
	Details map[string]string
}

// Error implements the error interface.
func (e *ImportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *ImportError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return e.Kind
}

// Is reports whether any error in err's chain matches the target.
func (e *ImportError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// Format returns a formatted error message with details and suggestions,
// suitable for printing to the terminal.
func (e *ImportError) Format() string {
	var sb strings.Builder

	sb.WriteString("Error: ")
	sb.WriteString(e.Error())
	sb.WriteString("\n")

	if len(e.Details) > 0 {
		sb.WriteString("\nDetails:\n")
		for k, v := range e.Details {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", k, v))
		}
	}

	if e.Suggestion != "" {
		sb.WriteString("\n💡 Suggestion: ")
		sb.WriteString(e.Suggestion)
		sb.WriteString("\n")
	}

	return sb.String()
}

// WithDetails adds details to the error.
func (e *ImportError) WithDetails(key, value string) *ImportError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds actionable advice to the error.
func (e *ImportError) WithSuggestion(suggestion string) *ImportError {
	e.Suggestion = suggestion
	return e
}

// WithCause sets the underlying cause of the error.
func (e *ImportError) WithCause(cause error) *ImportError {
	e.Cause = cause
	return e
}

// New creates a new ImportError with the given kind and message.
func New(kind error, message string) *ImportError {
	return &ImportError{
		Kind:    kind,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, kind error, message string) *ImportError {
	return &ImportError{
		Kind:    kind,
		Message: message,
		Cause:   err,
	}
}

// WithSuggestion creates a new error with a suggestion.
func WithSuggestion(kind error, message, suggestion string) *ImportError {
	return &ImportError{
		Kind:       kind,
		Message:    message,
		Suggestion: suggestion,
	}
}
