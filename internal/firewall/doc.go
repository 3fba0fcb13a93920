// Package firewall implements the privileged firewall-state core of
// portcullis: punching and plugging inbound holes, and enabling or
// disabling VPN policy routing for a set of users.
//
// # Overview
//
// The package never talks to the kernel directly. Every mutation is
// translated into an argument vector for one of the external tools
// (iptables, ip6tables, ip) and executed through a jail.Runner under a
// restricted capability set. Exit status is the only feedback channel.
//
// # Architecture
//
//	caller → Manager → rule argv builders → jail.Runner → external tool
//
// # Key Types
//
//   - [Manager]: owns the hole registries and the IPv6 capability latch
//   - [Hole]: one allowed inbound (port, interface) flow per protocol
//   - [ToolPaths]: filesystem locations of the external tools
//
// # State Rules
//
// A hole is tracked if and only if its IPv4 ACCEPT rule is believed
// installed. Punching is idempotent; plugging an untracked hole fails on
// purpose, to surface caller bugs. The IPv6 latch flips true on the
// first successful ip6tables install and never resets: after that, IPv6
// failures are treated as regressions and roll back the paired IPv4
// rule.
//
// VPN setup is transactional: a failed enable unwinds every rule it
// applied, while disable is best-effort and attempts every removal even
// after failures.
//
// # Concurrency
//
// The Manager is not safe for concurrent use. Callers that serve
// multiple goroutines (the control plane server does) must serialize
// every call with a single lock spanning whole operations, because
// rollback decisions depend on the outcome of earlier steps.
package firewall
