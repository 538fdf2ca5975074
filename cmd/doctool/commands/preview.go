package commands

import (
	"github.com/swiftusd/doctool/internal/pipeline"
)

// PreviewCmd implements the 'preview' command.
type PreviewCmd struct {
	NoOpen bool `name:"no-open" help:"Do not open the preview address in a browser"`
	Watch  bool `help:"Re-clean raw symbol graphs and relink generated articles when they change"`
}

func (p *PreviewCmd) Run(g *Global, root *CLI) error {
	s, err := newSession(g, root)
	if err != nil {
		return err
	}
	defer s.close()

	return s.pipeline().Preview(s.ctx, pipeline.PreviewOptions{
		Out:   g.Stdout,
		Open:  s.cfg.Preview.ShouldOpen() && !p.NoOpen,
		Watch: s.cfg.Preview.Watch || p.Watch,
	})
}
