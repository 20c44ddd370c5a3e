//go:build !unix

package executor

import (
	"os/exec"
	"time"
)

const waitDelay = 2 * time.Second

// configureProcessGroup kills only the direct child on platforms without
// process groups.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.WaitDelay = waitDelay
}
