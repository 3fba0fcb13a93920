//go:build linux
// +build linux

package jail

import (
	"errors"
	"os/exec"
	"os/user"
	"strconv"
	"syscall"

	"grimm.is/portcullis/internal/logging"
)

// ExecRunner launches real processes with dropped privileges.
type ExecRunner struct {
	cfg    Config
	logger *logging.Logger

	// resolved credential, nil when no identity change is configured
	cred *syscall.Credential
}

// NewRunner creates an ExecRunner. The configured user is resolved once,
// up front, so a bad configuration surfaces at startup rather than on the
// first firewall operation.
func NewRunner(cfg Config, logger *logging.Logger) (*ExecRunner, error) {
	if logger == nil {
		logger = logging.New(logging.DefaultConfig())
	}
	r := &ExecRunner{cfg: cfg, logger: logger.WithComponent("jail")}

	if cfg.User != "" {
		u, err := user.Lookup(cfg.User)
		if err != nil {
			return nil, err
		}
		uid, err := strconv.ParseUint(u.Uid, 10, 32)
		if err != nil {
			return nil, err
		}
		gid, err := strconv.ParseUint(u.Gid, 10, 32)
		if err != nil {
			return nil, err
		}
		r.cred = &syscall.Credential{Uid: uint32(uid), Gid: uint32(gid)}
	}

	return r, nil
}

// Run executes argv with the given capability mask and returns the exit
// status. Launch failures return StatusLaunchFailed.
func (r *ExecRunner) Run(argv []string, capMask uint64) int {
	if len(argv) == 0 {
		return StatusLaunchFailed
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Credential:  r.cred,
		AmbientCaps: ambientCaps(capMask),
	}

	out, err := cmd.CombinedOutput()
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		r.logger.Debug("command exited non-zero",
			"argv0", argv[0], "status", exitErr.ExitCode(), "output", string(out))
		return exitErr.ExitCode()
	}

	r.logger.Error("failed to launch command", "argv0", argv[0], "error", err)
	return StatusLaunchFailed
}

// ambientCaps expands a capability bit mask into the cap number list
// expected by SysProcAttr.AmbientCaps.
func ambientCaps(mask uint64) []uintptr {
	var caps []uintptr
	for c := uint(0); c < 64; c++ {
		if mask&(1<<c) != 0 {
			caps = append(caps, uintptr(c))
		}
	}
	return caps
}
