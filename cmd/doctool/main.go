package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/swiftusd/doctool/cmd/doctool/commands"
	"github.com/swiftusd/doctool/internal/foundation/errors"
	"github.com/swiftusd/doctool/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cli := &commands.CLI{}
	global := &commands.Global{Stdout: os.Stdout, Stderr: os.Stderr}

	parser, err := newParser(cli)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "doctool: %v\n", err)
		return errors.ExitInternal
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "doctool: %v\n", err)
		return errors.ExitUsage
	}

	if err := kctx.Run(global, cli); err != nil {
		// HandleError prints the error and exits with the code for its category.
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
	return errors.ExitOK
}

func newParser(cli *commands.CLI, opts ...kong.Option) (*kong.Kong, error) {
	opts = append([]kong.Option{
		kong.Name("doctool"),
		kong.Description("Builds the symbol-graph documentation catalog and drives the documentation compiler."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	}, opts...)
	return kong.New(cli, opts...)
}
