//go:build unix

package runner

import (
	"os/exec"
	"syscall"
)

// setProcessGroup puts the shell in its own process group so that
// cancellation also reaches the commands it started, including background
// jobs still holding the output pipes.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
