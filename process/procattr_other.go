//go:build !unix

package process

import "os/exec"

// Without process groups only the direct child can be killed.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return cmd.Process.Kill()
	}
}

func killProcessGroup(int) {}
