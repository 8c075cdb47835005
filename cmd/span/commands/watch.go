package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	serrors "git.home.luguber.info/inful/span/internal/errors"
	"git.home.luguber.info/inful/span/internal/logfields"
	"git.home.luguber.info/inful/span/internal/preview"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Input    string        `arg:"" optional:"" help:"Source directory" default:"." type:"path"`
	Output   string        `arg:"" optional:"" help:"Output directory" default:"./output" type:"path"`
	Debounce time.Duration `help:"Quiet period after the last change before rebuilding" default:"300ms"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	src, err := resolveSource(w.Input)
	if err != nil {
		return err
	}
	if src.isSnapshot() {
		return serrors.ValidationFailed("input", "watch needs a source directory, not a snapshot")
	}

	run := newBuildRun(root, w.Input, w.Output)
	if err := run.Execute(ctx); err != nil {
		// The first build may fail on content the user is about to fix.
		slog.Warn("Initial build failed", logfields.Error(err))
	}

	watcher := &preview.Watcher{
		Dir:      src.WorkDir,
		Exclude:  []string{w.Output},
		Debounce: w.Debounce,
		Rebuild:  run.Execute,
	}
	return watcher.Run(ctx)
}
