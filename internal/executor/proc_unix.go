//go:build unix

package executor

import (
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// waitDelay bounds how long Wait blocks on output pipes held open by
// grandchildren after the process group was killed.
const waitDelay = 2 * time.Second

// configureProcessGroup places the child in its own process group and
// arranges for context cancellation to kill the entire group.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// Negative pid addresses the group; pgid == pid with Setpgid.
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
	cmd.WaitDelay = waitDelay
}
