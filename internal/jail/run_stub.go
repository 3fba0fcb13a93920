//go:build !linux
// +build !linux

package jail

import (
	"errors"
	"os/exec"

	"grimm.is/portcullis/internal/logging"
)

// ExecRunner launches real processes (stub for non-Linux: no capability
// restriction or identity change is available, commands run plainly).
type ExecRunner struct {
	logger *logging.Logger
}

// NewRunner creates an ExecRunner (stub for non-Linux).
func NewRunner(cfg Config, logger *logging.Logger) (*ExecRunner, error) {
	if logger == nil {
		logger = logging.New(logging.DefaultConfig())
	}
	return &ExecRunner{logger: logger.WithComponent("jail")}, nil
}

// Run executes argv and returns the exit status.
func (r *ExecRunner) Run(argv []string, capMask uint64) int {
	if len(argv) == 0 {
		return StatusLaunchFailed
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		r.logger.Error("failed to launch command", "argv0", argv[0], "error", err)
		return StatusLaunchFailed
	}
	return 0
}
