package commands

import (
	"fmt"

	"github.com/swiftusd/doctool/internal/pipeline"
)

// UpdateCmd implements the 'update' command.
type UpdateCmd struct {
	Bundle string `type:"path" placeholder:"FILE" help:"Also write the static site as a gzipped tarball"`
}

func (u *UpdateCmd) Run(g *Global, root *CLI) error {
	s, err := newSession(g, root)
	if err != nil {
		return err
	}
	defer s.close()

	report, err := s.pipeline().Update(s.ctx, pipeline.UpdateOptions{Bundle: u.Bundle})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Stdout, "Updated %s and %s in %s\n",
		s.layout.Rel(s.layout.Archive), s.layout.Rel(s.layout.Docs), elapsed(report))
	if u.Bundle != "" {
		_, _ = fmt.Fprintf(g.Stdout, "Bundled %d files into %s\n", report.BundleFiles, u.Bundle)
	}
	return nil
}
