package build

import (
	"context"
	"errors"

	"git.home.luguber.info/inful/span/internal/command"
	serrors "git.home.luguber.info/inful/span/internal/errors"
	"git.home.luguber.info/inful/span/internal/frontmatter"
	"git.home.luguber.info/inful/span/internal/snippets"
	"git.home.luguber.info/inful/span/internal/vfs"
)

// Sentinel errors for pipeline failures. They are always wrapped with the
// file and command involved.
var (
	ErrConfigRequired = errors.New("config required")
	ErrSourceRequired = errors.New("source tree required")
	ErrMissingFolder  = errors.New("required folder missing")
	ErrNoTemplate     = errors.New("no matching template")
	ErrStepFailed     = errors.New("pre-run command failed")
	ErrRenderFailed   = errors.New("renderer failed")
)

// classify maps a stage failure onto an error category for exit codes.
// The first matching rule wins.
func classify(err error) serrors.ErrorCategory {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return serrors.CategoryBuild
	case errors.Is(err, vfs.ErrInvalidGlob):
		return serrors.CategoryConfig
	case errors.Is(err, ErrMissingFolder), errors.Is(err, ErrNoTemplate), errors.Is(err, snippets.ErrSnippetNotFound),
		errors.Is(err, vfs.ErrPathEscapes), errors.Is(err, vfs.ErrInvalidPath):
		return serrors.CategoryStructure
	case errors.Is(err, snippets.ErrSyntax), isResolveError(err):
		return serrors.CategoryPlaceholder
	case errors.Is(err, snippets.ErrInvalidUTF8), errors.Is(err, frontmatter.ErrMissingClosingDelimiter),
		errors.Is(err, frontmatter.ErrNotMapping):
		return serrors.CategoryContent
	case errors.Is(err, ErrStepFailed), errors.Is(err, ErrRenderFailed),
		errors.Is(err, command.ErrStart), errors.Is(err, command.ErrEmptyCommand):
		return serrors.CategoryProcess
	default:
		return serrors.CategoryBuild
	}
}

func isResolveError(err error) bool {
	var re *snippets.ResolveError
	return errors.As(err, &re)
}
