package build

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"git.home.luguber.info/inful/span/internal/command"
	"git.home.luguber.info/inful/span/internal/metrics"
	"git.home.luguber.info/inful/span/internal/vfs"
)

const commandKindRender = "render"

// RenderRequest describes one content file to convert.
type RenderRequest struct {
	// Path is the path of the content file in the source tree.
	Path string
	// Content is the expanded file content fed to the renderer.
	Content []byte
	// Template is the template path relative to the source root.
	Template string
	// Filters lists the renderer filters selected for the file.
	Filters []string
}

// Renderer converts a single content file into its output document.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) ([]byte, error)
}

// CommandRenderer renders by running an external command line with the
// content on stdin:
//
//	<Command> <ExtraArgs...> --template <template> [--filter=<path> ...]
type CommandRenderer struct {
	Command   string
	ExtraArgs []string
	Executor  command.Executor
	Recorder  metrics.Recorder
}

// NewCommandRenderer returns a renderer for the given base command line.
func NewCommandRenderer(cmd string, extraArgs []string, executor command.Executor) *CommandRenderer {
	return &CommandRenderer{
		Command:   cmd,
		ExtraArgs: extraArgs,
		Executor:  executor,
		Recorder:  metrics.NoopRecorder{},
	}
}

// Args returns the argument list for req.
func (r *CommandRenderer) Args(req RenderRequest) []string {
	argv := command.Split(r.Command)
	for _, a := range r.ExtraArgs {
		argv = append(argv, command.Split(a)...)
	}
	argv = append(argv, "--template", req.Template)
	for _, f := range req.Filters {
		argv = append(argv, "--filter="+f)
	}
	return argv
}

// Render runs the command. Anything written to stderr, or a non-zero exit
// status, fails the file.
func (r *CommandRenderer) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	argv := r.Args(req)
	start := time.Now()
	res, err := r.Executor.Run(ctx, argv, req.Content)
	if err == nil {
		switch {
		case len(res.Stderr) > 0:
			err = fmt.Errorf("%w: error from %s, using template %s:\n%s",
				ErrRenderFailed, argv[0], req.Template, res.Stderr)
		case !res.Success():
			err = fmt.Errorf("%w: %s exited with status %d, using template %s",
				ErrRenderFailed, argv[0], res.ExitCode, req.Template)
		}
	}
	if r.Recorder != nil {
		r.Recorder.ObserveCommandDuration(commandKindRender, time.Since(start), err == nil)
	}
	if err != nil {
		return nil, err
	}
	return res.Stdout, nil
}

// String returns the base command line, used in logs.
func (r *CommandRenderer) String() string {
	return strings.Join(append(command.Split(r.Command), r.ExtraArgs...), " ")
}

// outputPath replaces the extension of p with .html.
func outputPath(p string) string {
	return path.Join(path.Dir(p), vfs.Stem(path.Base(p))+".html")
}
