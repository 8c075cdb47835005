package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI applications.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if se, ok := As(err); ok {
		return a.exitCodeFromSpan(se)
	}

	return 1
}

// exitCodeFromSpan maps SpanError to exit codes.
func (a *CLIErrorAdapter) exitCodeFromSpan(err *SpanError) int {
	switch err.Category {
	case CategoryConfig:
		return 7 // Configuration error
	case CategoryIO:
		return 9 // Filesystem error
	case CategoryStructure, CategoryContent, CategoryPlaceholder:
		return 11 // Input could not be built
	case CategoryProcess, CategoryBuild:
		return 12 // External command or pipeline error
	case CategoryInternal:
		return 10 // Internal error
	default:
		return 1 // General error
	}
}

// FormatError renders err as an "error:" line followed by one "caused by:"
// line per wrapped cause. Aggregated errors are listed one per line.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	chain := causeChain(err)
	var b strings.Builder
	fmt.Fprintf(&b, "error: %s", chain[0])
	for _, c := range chain[1:] {
		fmt.Fprintf(&b, "\ncaused by: %s", c)
	}
	if se, ok := As(err); ok && a.verbose && len(se.Context) > 0 {
		for _, k := range slices.Sorted(maps.Keys(se.Context)) {
			fmt.Fprintf(&b, "\n  %s: %v", k, se.Context[k])
		}
	}
	return b.String()
}

// causeChain returns the message of every level of err, each without the
// text of the levels below it.
func causeChain(err error) []string {
	var out []string
	for err != nil {
		if _, ok := err.(interface{ Unwrap() []error }); ok {
			out = append(out, indent(err.Error()))
			break
		}

		next := errors.Unwrap(err)
		msg := err.Error()
		if se, ok := err.(*SpanError); ok {
			msg = fmt.Sprintf("%s: %s", se.Category, se.Message)
		} else if next != nil {
			msg = strings.TrimSuffix(msg, ": "+next.Error())
		}
		out = append(out, msg)
		err = next
	}
	return out
}

func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n  ")
}

// HandleError processes an error and exits the program with appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	exitCode := a.ExitCodeFor(err)
	message := a.FormatError(err)

	if a.shouldLog(err) {
		a.logError(err)
	}

	fmt.Fprintf(os.Stderr, "%s\n", message)
	os.Exit(exitCode)
}

// shouldLog determines if an error should be logged.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}

	if se, ok := As(err); ok {
		return se.Category == CategoryInternal
	}

	return true
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	if se, ok := As(err); ok {
		level := a.slogLevelFromSeverity(se.Severity)
		attrs := []slog.Attr{
			slog.String("category", string(se.Category)),
		}
		for _, k := range slices.Sorted(maps.Keys(se.Context)) {
			attrs = append(attrs, slog.Any(k, se.Context[k]))
		}

		a.logger.LogAttrs(context.Background(), level, se.Message, attrs...)
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}

// slogLevelFromSeverity converts SpanError severity to slog level.
func (a *CLIErrorAdapter) slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
