// Package command runs external programs over byte content.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	"git.home.luguber.info/inful/span/internal/logfields"
	"git.home.luguber.info/inful/span/internal/workspace"
)

// Tokens replaced by temporary file paths in an argument list.
const (
	InputToken  = "%i"
	OutputToken = "%o"
)

var (
	// ErrEmptyCommand is returned for an argument list without a program.
	ErrEmptyCommand = errors.New("could not find program name")
	// ErrStart is returned when the program could not be started.
	ErrStart = errors.New("failed to start command")
)

// Result is the outcome of a finished command. A non-zero exit status is
// not an error; callers decide what it means.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Success reports whether the command exited with status zero.
func (r *Result) Success() bool { return r.ExitCode == 0 }

// Executor runs one command with the given standard input.
type Executor interface {
	Run(ctx context.Context, argv []string, stdin []byte) (*Result, error)
}

// Split tokenizes a command line on whitespace. No quoting is supported.
func Split(cmd string) []string {
	return strings.Fields(cmd)
}

// Runner executes commands as local processes.
type Runner struct {
	// Dir is the working directory of the process (current directory when empty).
	Dir string
	// TempDir is where per-invocation workspaces are created (system default when empty).
	TempDir string
}

// NewRunner returns a Runner working in dir.
func NewRunner(dir string) *Runner {
	return &Runner{Dir: dir}
}

// Run executes argv with stdin piped to the process. When the arguments
// contain %i or %o, the tokens are replaced by files in a fresh workspace:
// %i is filled with stdin before the start and the contents of %o replace
// the captured stdout after the process exits. The workspace is removed
// before Run returns.
func (r *Runner) Run(ctx context.Context, argv []string, stdin []byte) (*Result, error) {
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}
	args := slices.Clone(argv[1:])

	var outFile string
	if slices.Contains(args, InputToken) || slices.Contains(args, OutputToken) {
		ws := workspace.NewManager(r.TempDir)
		if err := ws.Create(); err != nil {
			return nil, fmt.Errorf("couldn't create temporary directory: %w", err)
		}
		defer func() {
			if err := ws.Cleanup(); err != nil {
				slog.Warn("Failed to remove command workspace", logfields.Path(ws.GetPath()), logfields.Error(err))
			}
		}()

		inFile, out, err := tempFiles(ws)
		if err != nil {
			return nil, err
		}
		outFile = out
		wroteInput := false
		for i, a := range args {
			switch a {
			case InputToken:
				args[i] = inFile
				if !wroteInput {
					if err := os.WriteFile(inFile, stdin, 0o600); err != nil {
						return nil, fmt.Errorf("failed to write to temporary input file: %w", err)
					}
					wroteInput = true
				}
			case OutputToken:
				args[i] = outFile
			}
		}
		if !slices.Contains(argv[1:], OutputToken) {
			outFile = ""
		}
	}

	cmd := exec.CommandContext(ctx, argv[0], args...)
	cmd.Dir = r.Dir
	// exec copies stdin from its own goroutine while Wait drains the output
	// pipes, so large inputs cannot fill a pipe buffer and block.
	cmd.Stdin = bytes.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := &Result{Stderr: stderr.Bytes()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", argv[0], ctxErr)
		}
		res.ExitCode = exitErr.ExitCode()
	default:
		return nil, fmt.Errorf("%w %s: %w", ErrStart, argv[0], err)
	}

	res.Stdout = stdout.Bytes()
	if outFile != "" {
		out, err := os.ReadFile(outFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read from temporary output file: %w", err)
		}
		res.Stdout = out
	}

	slog.Debug("Command finished",
		logfields.Command(strings.Join(argv, " ")),
		logfields.ExitCode(res.ExitCode),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	return res, nil
}

// tempFiles returns the %i and %o paths inside a created workspace.
func tempFiles(ws *workspace.Manager) (in, out string, err error) {
	if in, err = ws.File("stdin"); err != nil {
		return "", "", fmt.Errorf("temporary input file: %w", err)
	}
	if out, err = ws.File("stdout"); err != nil {
		return "", "", fmt.Errorf("temporary output file: %w", err)
	}
	return in, out, nil
}
