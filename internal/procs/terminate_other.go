//go:build !unix

package procs

import (
	"os"
	"os/exec"
)

func configureTermination(c *exec.Cmd) {
	c.Cancel = func() error {
		return c.Process.Signal(os.Interrupt)
	}
}
