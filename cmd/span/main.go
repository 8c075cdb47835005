package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/span/cmd/span/commands"
	serrors "git.home.luguber.info/inful/span/internal/errors"
	"git.home.luguber.info/inful/span/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Must(cli,
		kong.Name("span"),
		kong.Description("A static site generator based on pandoc."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	global := &commands.Global{Logger: slog.Default()}
	if err := ctx.Run(global, cli); err != nil {
		serrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}
