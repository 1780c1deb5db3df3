package errors

import (
	stderrors "errors"
	"fmt"
)

// IndexError is the structured error type for gen-file-index.
// It carries enough context for logging and for a readable CLI diagnostic.
type IndexError struct {
	// Code is the unique error code (e.g., "ERR_203_WALK_FAILED").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *IndexError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *IndexError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an IndexError with the same code.
func (e *IndexError) Is(target error) bool {
	if t, ok := target.(*IndexError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *IndexError) WithDetail(key, value string) *IndexError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *IndexError) WithSuggestion(suggestion string) *IndexError {
	e.Suggestion = suggestion
	return e
}

// New creates a new IndexError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *IndexError {
	return &IndexError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates an IndexError from an existing error.
// The error's message becomes the IndexError message.
func Wrap(code string, err error) *IndexError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *IndexError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// WalkError creates a traversal error for the given path.
func WalkError(path string, cause error) *IndexError {
	return New(ErrCodeWalkFailed, fmt.Sprintf("failed to walk %s", path), cause).
		WithDetail("path", path)
}

// WriteError creates an output write error for the given path.
func WriteError(path string, cause error) *IndexError {
	return New(ErrCodeWriteFailed, fmt.Sprintf("failed to write index %s", path), cause).
		WithDetail("path", path).
		WithSuggestion("Check that the output directory exists and is writable")
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *IndexError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *IndexError {
	return New(ErrCodeInternal, message, cause)
}

// As returns the first IndexError in err's chain.
func As(err error) (*IndexError, bool) {
	var ie *IndexError
	if stderrors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	if ie, ok := As(err); ok {
		return ie.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from an IndexError in err's chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	if ie, ok := As(err); ok {
		return ie.Code
	}
	return ""
}

// GetCategory extracts the category from an IndexError in err's chain.
func GetCategory(err error) Category {
	if ie, ok := As(err); ok {
		return ie.Category
	}
	return ""
}
