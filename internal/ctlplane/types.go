// Package ctlplane provides the RPC interface between the privileged
// firewall daemon and the unprivileged CLI clients.
//
// # RPC Naming Convention
//
// All RPC types follow the pattern:
//   - Request: {MethodName}Args
//   - Response: {MethodName}Reply
//
// Empty is used for methods with no arguments.
package ctlplane

import "time"

// Empty is used for RPC methods that take no arguments
type Empty struct{}

// PunchHoleArgs opens inbound traffic to a port.
type PunchHoleArgs struct {
	Protocol  string `json:"protocol"` // "tcp" or "udp"
	Port      uint16 `json:"port"`
	Interface string `json:"interface,omitempty"` // empty means all interfaces
}

// PunchHoleReply reports whether the hole was opened.
type PunchHoleReply struct {
	Success bool `json:"success"`
}

// PlugHoleArgs closes a previously punched hole. The tuple must match
// the punch exactly.
type PlugHoleArgs struct {
	Protocol  string `json:"protocol"`
	Port      uint16 `json:"port"`
	Interface string `json:"interface,omitempty"`
}

// PlugHoleReply reports whether the hole was closed.
type PlugHoleReply struct {
	Success bool `json:"success"`
}

// VpnSetupArgs enables or disables VPN policy routing for a set of
// users through a tunnel interface.
type VpnSetupArgs struct {
	Usernames []string `json:"usernames"`
	Interface string   `json:"interface"`
}

// VpnSetupReply reports whether the whole transaction succeeded.
type VpnSetupReply struct {
	Success bool `json:"success"`
}

// HoleInfo describes one tracked hole.
type HoleInfo struct {
	Protocol  string `json:"protocol"`
	Port      uint16 `json:"port"`
	Interface string `json:"interface,omitempty"`
	// InterfacePresent reports whether the interface currently exists
	// on the system. Informational only; holes on absent interfaces
	// stay tracked. Always true for all-interface holes.
	InterfacePresent bool `json:"interface_present"`
}

// ListHolesReply lists every tracked hole across both protocols.
type ListHolesReply struct {
	Holes []HoleInfo `json:"holes"`
}

// Status is the daemon status summary.
type Status struct {
	Running   bool   `json:"running"`
	Uptime    string `json:"uptime"`
	Version   string `json:"version"`
	TCPHoles  int    `json:"tcp_holes"`
	UDPHoles  int    `json:"udp_holes"`
	// IPv6Active reports the ip6tables capability latch: true once an
	// IPv6 rule has ever installed successfully this run.
	IPv6Active bool   `json:"ipv6_active"`
	StartedAt  string `json:"started_at"`
}

// GetStatusReply wraps Status for the RPC layer.
type GetStatusReply struct {
	Status Status `json:"status"`
}

func formatUptime(d time.Duration) string {
	return d.Round(time.Second).String()
}
