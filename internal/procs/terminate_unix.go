//go:build unix

package procs

import (
	"os/exec"
	"syscall"
)

// configureTermination puts the child in its own process group and makes context
// cancellation send SIGTERM to the whole group. exec.Cmd.WaitDelay then escalates to
// SIGKILL for the direct child.
func configureTermination(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
}
