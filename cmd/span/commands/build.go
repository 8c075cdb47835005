package commands

import (
	"context"
	"os/signal"
	"syscall"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Input  string `arg:"" optional:"" help:"Source directory or snapshot file" default:"." type:"path"`
	Output string `arg:"" optional:"" help:"Output directory, or an existing file to receive a snapshot" default:"./output" type:"path"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return newBuildRun(root, b.Input, b.Output).Execute(ctx)
}
