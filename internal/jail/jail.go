// Package jail runs external privileged tools under a restricted
// capability set and, where the platform permits, a lowered-privilege
// identity. It is the only place in portcullis that spawns processes.
//
// The contract is deliberately tiny: callers hand over a full argument
// vector (argv[0] is the executable path) and a capability mask, and get
// back the process's exit status. StatusLaunchFailed is returned when
// the process could not be started at all. No retry happens here; retry
// policy, if any, belongs to the caller.
package jail

// StatusLaunchFailed is the sentinel exit status reported when the
// external command could not be launched.
const StatusLaunchFailed = -1

// CapNetAdmin and CapNetRaw are the only capabilities the packet-filter
// and routing tools need.
const (
	CapNetAdmin = 12 // CAP_NET_ADMIN
	CapNetRaw   = 13 // CAP_NET_RAW
)

// CapMask converts capability numbers into the bit mask form used by
// Runner implementations.
func CapMask(caps ...uint) uint64 {
	var mask uint64
	for _, c := range caps {
		mask |= 1 << c
	}
	return mask
}

// NetToolCaps is the capability mask for iptables/ip invocations.
var NetToolCaps = CapMask(CapNetAdmin, CapNetRaw)

// Runner executes one external command under the given capability mask
// and returns its exit status (0 = success, StatusLaunchFailed if the
// command never ran).
type Runner interface {
	Run(argv []string, capMask uint64) int
}

// Config controls privilege dropping for the real runner.
type Config struct {
	// User to run external tools as on platforms where the caller is
	// not already sandboxed. Empty disables the identity change.
	User string
}
