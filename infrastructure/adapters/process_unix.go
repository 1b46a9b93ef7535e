//go:build unix

package adapters

import (
	"os/exec"
	"syscall"
)

func isolateProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		// Negative pid signals every process in the group, including engine children.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
