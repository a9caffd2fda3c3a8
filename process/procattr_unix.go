//go:build unix

package process

import (
	"os/exec"
	"syscall"
)

// setProcessGroup starts the child as the leader of a new process group so
// cancellation can signal every descendant at once.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}

func killProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// ESRCH just means the group is already gone.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
