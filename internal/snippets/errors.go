package snippets

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax marks a malformed placeholder.
	ErrSyntax = errors.New("malformed placeholder")
	// ErrSnippetNotFound is returned when no snippet file matches an expansion.
	ErrSnippetNotFound = errors.New("snippet not found")
	// ErrInvalidUTF8 is returned for contents that must be text but are not.
	ErrInvalidUTF8 = errors.New("content is not valid UTF-8")
)

// SyntaxError reports a placeholder that could not be parsed.
type SyntaxError struct {
	Line   int
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, ErrSyntax, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// ResolveError reports a reference that could not be turned into text.
type ResolveError struct {
	Chain string
	// Segment is set when a key of the chain does not exist.
	Segment string
	// Kind is set when the final value is a composite ("sequence", "mapping").
	Kind  string
	Value any
}

func (e *ResolveError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("key %s does not exist (part of key chain %q)", e.Segment, e.Chain)
	}
	return fmt.Sprintf("value of %q is a %s and therefore cannot be treated like a string: %v", e.Chain, e.Kind, e.Value)
}
