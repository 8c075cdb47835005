// Package errors provides a lightweight structured error type (SpanError)
// for category-based classification in the CLI.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory represents the category of an error for classification
type ErrorCategory string

const (
	// Reading or writing the real filesystem
	CategoryIO ErrorCategory = "io"
	// Unparseable configuration or malformed glob patterns
	CategoryConfig ErrorCategory = "config"

	// Input trees that cannot be processed as laid out
	CategoryStructure ErrorCategory = "structure"
	CategoryContent   ErrorCategory = "content"
	// Snippet placeholders that cannot be expanded
	CategoryPlaceholder ErrorCategory = "placeholder"
	// External commands that failed to start or tripped an error policy
	CategoryProcess ErrorCategory = "process"

	CategoryBuild    ErrorCategory = "build"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// SpanError is a structured error with category, severity and context
type SpanError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for SpanError
type ContextFields map[string]any

// Error implements the error interface
func (e *SpanError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *SpanError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *SpanError) WithContext(key string, value any) *SpanError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new SpanError
func New(category ErrorCategory, severity ErrorSeverity, message string) *SpanError {
	return &SpanError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new SpanError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *SpanError {
	return &SpanError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// As returns the outermost SpanError in err's chain.
func As(err error) (*SpanError, bool) {
	var se *SpanError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if se, ok := As(err); ok {
		return se.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a SpanError
func GetCategory(err error) ErrorCategory {
	if se, ok := As(err); ok {
		return se.Category
	}
	return CategoryInternal
}
