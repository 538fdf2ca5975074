package commands

import (
	"fmt"

	"github.com/swiftusd/doctool/internal/pipeline"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	CleanOnly bool `name:"clean-only" help:"Skip extraction and re-clean the raw symbol graphs from the last build"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	s, err := newSession(g, root)
	if err != nil {
		return err
	}
	defer s.close()

	report, err := s.pipeline().Build(s.ctx, pipeline.BuildOptions{CleanOnly: b.CleanOnly})
	if err != nil {
		return err
	}
	totals := report.Clean.Totals()
	_, _ = fmt.Fprintf(g.Stdout, "Cleaned %d symbol graphs (%d symbols, %d remapped, %d unconverted), linked %d articles in %s\n",
		len(report.Clean.Files), totals.Symbols, totals.Remapped, totals.Unconverted,
		len(report.Articles.Articles), elapsed(report))
	return nil
}
