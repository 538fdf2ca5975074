package commands

import (
	"fmt"

	"github.com/swiftusd/doctool/internal/config"
	"github.com/swiftusd/doctool/internal/foundation/errors"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	path := root.Config
	if path == "" {
		path = config.DefaultFilename
	}
	_, _ = fmt.Fprintf(g.Stdout, "Writing configuration to %s\n", path)
	if err := config.Init(path, i.Force); err != nil {
		return errors.ConfigError("initialize configuration").WithCause(err).WithContext("path", path).Build()
	}
	return nil
}
