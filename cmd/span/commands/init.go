package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/span/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool   `help:"Overwrite existing configuration file"`
	Dir   string `arg:"" optional:"" help:"Input directory to place the configuration in" default:"." type:"path"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	return RunInit(resolveConfigPath(root.Config, i.Dir), i.Force)
}

func RunInit(configPath string, force bool) error {
	fmt.Printf("Writing configuration to %s\n", filepath.Clean(configPath))
	if err := config.Init(configPath, force); err != nil {
		return err
	}
	fmt.Println("initialized successfully")
	return nil
}
