package firewall

import (
	"fmt"
	"path/filepath"

	"grimm.is/portcullis/internal/jail"
	"grimm.is/portcullis/internal/logging"
	"grimm.is/portcullis/internal/metrics"
	"grimm.is/portcullis/internal/validation"
)

// Manager tracks punched holes per protocol and owns the IPv6
// capability latch. It is not safe for concurrent use; see the package
// documentation.
type Manager struct {
	runner jail.Runner
	logger *logging.Logger
	paths  ToolPaths

	tcpHoles map[Hole]struct{}
	udpHoles map[Hole]struct{}

	// ip6Enabled latches true on the first successful ip6tables
	// invocation and never resets.
	ip6Enabled bool

	// fatalf reports an unrecoverable internal-state violation.
	// Overridable in tests.
	fatalf func(format string, args ...any)
}

// NewManager creates a Manager that executes tools through runner.
func NewManager(runner jail.Runner, logger *logging.Logger, paths ToolPaths) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	m := &Manager{
		runner:   runner,
		logger:   logger.WithComponent("firewall"),
		paths:    paths,
		tcpHoles: make(map[Hole]struct{}),
		udpHoles: make(map[Hole]struct{}),
	}
	m.fatalf = func(format string, args ...any) {
		m.logger.Error(fmt.Sprintf(format, args...))
		panic(fmt.Sprintf(format, args...))
	}
	return m
}

// PunchTcpHole opens inbound TCP traffic to port on the given
// interface. An empty interface applies to all interfaces. Punching a
// hole that is already tracked succeeds without issuing commands.
func (m *Manager) PunchTcpHole(port uint16, iface string) bool {
	return m.punchHole(ProtocolTCP, m.tcpHoles, port, iface)
}

// PunchUdpHole is the UDP counterpart of PunchTcpHole.
func (m *Manager) PunchUdpHole(port uint16, iface string) bool {
	return m.punchHole(ProtocolUDP, m.udpHoles, port, iface)
}

// PlugTcpHole closes a previously punched TCP hole. Plugging a hole
// that is not tracked fails; the mismatch indicates a caller bug.
func (m *Manager) PlugTcpHole(port uint16, iface string) bool {
	return m.plugHole(ProtocolTCP, m.tcpHoles, port, iface)
}

// PlugUdpHole is the UDP counterpart of PlugTcpHole.
func (m *Manager) PlugUdpHole(port uint16, iface string) bool {
	return m.plugHole(ProtocolUDP, m.udpHoles, port, iface)
}

func (m *Manager) punchHole(proto Protocol, holes map[Hole]struct{}, port uint16, iface string) bool {
	if err := validation.ValidatePort(port); err != nil {
		m.logger.Error("refusing punch", "protocol", proto, "error", err)
		metrics.GetRegistry().PunchTotal.WithLabelValues(string(proto), metrics.ResultFail).Inc()
		return false
	}
	if err := validation.ValidateInterfaceName(iface); err != nil {
		m.logger.Error("refusing punch", "protocol", proto, "port", port, "error", err)
		metrics.GetRegistry().PunchTotal.WithLabelValues(string(proto), metrics.ResultFail).Inc()
		return false
	}

	hole := Hole{Port: port, Interface: iface}
	if _, ok := holes[hole]; ok {
		m.logger.Debug("hole already punched", "protocol", proto, "port", port, "interface", iface)
		metrics.GetRegistry().PunchTotal.WithLabelValues(string(proto), metrics.ResultOK).Inc()
		return true
	}

	if !m.addAcceptRules(proto, port, iface) {
		m.logger.Error("punch failed", "protocol", proto, "port", port, "interface", iface)
		metrics.GetRegistry().PunchTotal.WithLabelValues(string(proto), metrics.ResultFail).Inc()
		return false
	}

	holes[hole] = struct{}{}
	metrics.GetRegistry().HolesOpen.WithLabelValues(string(proto)).Set(float64(len(holes)))
	metrics.GetRegistry().PunchTotal.WithLabelValues(string(proto), metrics.ResultOK).Inc()
	m.logger.Info("hole punched", "protocol", proto, "port", port, "interface", iface)
	return true
}

func (m *Manager) plugHole(proto Protocol, holes map[Hole]struct{}, port uint16, iface string) bool {
	if err := validation.ValidatePort(port); err != nil {
		m.logger.Error("refusing plug", "protocol", proto, "error", err)
		metrics.GetRegistry().PlugTotal.WithLabelValues(string(proto), metrics.ResultFail).Inc()
		return false
	}

	hole := Hole{Port: port, Interface: iface}
	if _, ok := holes[hole]; !ok {
		m.logger.Error("hole was not punched", "protocol", proto, "port", port, "interface", iface)
		metrics.GetRegistry().PlugTotal.WithLabelValues(string(proto), metrics.ResultFail).Inc()
		return false
	}

	// The hole stays tracked until the rules are confirmed gone;
	// membership means the rule is believed installed.
	if !m.deleteAcceptRules(proto, port, iface) {
		m.logger.Error("plug failed", "protocol", proto, "port", port, "interface", iface)
		metrics.GetRegistry().PlugTotal.WithLabelValues(string(proto), metrics.ResultFail).Inc()
		return false
	}

	delete(holes, hole)
	metrics.GetRegistry().HolesOpen.WithLabelValues(string(proto)).Set(float64(len(holes)))
	metrics.GetRegistry().PlugTotal.WithLabelValues(string(proto), metrics.ResultOK).Inc()
	m.logger.Info("hole plugged", "protocol", proto, "port", port, "interface", iface)
	return true
}

// addAcceptRules installs the IPv4 ACCEPT rule and then the IPv6 one.
// An IPv4 failure fails the whole operation. An IPv6 failure is ignored
// until the first IPv6 success has latched; after that it rolls back
// the IPv4 rule and fails.
func (m *Manager) addAcceptRules(proto Protocol, port uint16, iface string) bool {
	if !m.run(acceptRuleArgs(m.paths.IPTables, true, proto, port, iface)) {
		return false
	}
	if m.run(acceptRuleArgs(m.paths.IP6Tables, true, proto, port, iface)) {
		m.ip6Enabled = true
		return true
	}
	if !m.ip6Enabled {
		m.logger.Warn("ipv6 rule skipped, ip6tables not yet functional",
			"protocol", proto, "port", port, "interface", iface)
		return true
	}
	m.logger.Error("ipv6 rule failed after working before, rolling back ipv4",
		"protocol", proto, "port", port, "interface", iface)
	if !m.run(acceptRuleArgs(m.paths.IPTables, false, proto, port, iface)) {
		m.logger.Error("ipv4 rollback failed", "protocol", proto, "port", port, "interface", iface)
	}
	return false
}

// deleteAcceptRules removes the IPv4 rule and, once the latch is set,
// the IPv6 one. Before the latch no IPv6 rule was ever installed, so
// there is nothing to delete.
func (m *Manager) deleteAcceptRules(proto Protocol, port uint16, iface string) bool {
	ok4 := m.run(acceptRuleArgs(m.paths.IPTables, false, proto, port, iface))
	ok6 := true
	if m.ip6Enabled {
		ok6 = m.run(acceptRuleArgs(m.paths.IP6Tables, false, proto, port, iface))
	}
	return ok4 && ok6
}

// PlugAllHoles removes every tracked hole. It is the teardown path; a
// hole surviving it means firewall state would leak past the manager's
// lifetime, which is treated as fatal.
func (m *Manager) PlugAllHoles() {
	for _, p := range []struct {
		proto Protocol
		holes map[Hole]struct{}
	}{
		{ProtocolTCP, m.tcpHoles},
		{ProtocolUDP, m.udpHoles},
	} {
		// Snapshot first: plugHole mutates the map.
		snapshot := make([]Hole, 0, len(p.holes))
		for h := range p.holes {
			snapshot = append(snapshot, h)
		}
		for _, h := range snapshot {
			m.plugHole(p.proto, p.holes, h.Port, h.Interface)
		}
	}
	if len(m.tcpHoles) != 0 || len(m.udpHoles) != 0 {
		m.fatalf("holes survived teardown: tcp=%d udp=%d", len(m.tcpHoles), len(m.udpHoles))
	}
}

// Close tears down all tracked state.
func (m *Manager) Close() {
	m.PlugAllHoles()
}

// IPv6Enabled reports whether the IPv6 capability latch is set.
func (m *Manager) IPv6Enabled() bool {
	return m.ip6Enabled
}

// Holes returns the tracked holes for a protocol, for status reporting.
func (m *Manager) Holes(proto Protocol) []Hole {
	var src map[Hole]struct{}
	switch proto {
	case ProtocolTCP:
		src = m.tcpHoles
	case ProtocolUDP:
		src = m.udpHoles
	default:
		return nil
	}
	out := make([]Hole, 0, len(src))
	for h := range src {
		out = append(out, h)
	}
	return out
}

// run executes one tool invocation through the jail and reports whether
// it exited zero.
func (m *Manager) run(argv []string) bool {
	status := m.runner.Run(argv, jail.NetToolCaps)
	tool := filepath.Base(argv[0])
	ok := status == 0
	metrics.GetRegistry().CommandTotal.WithLabelValues(tool, metrics.ResultLabel(ok)).Inc()
	if !ok {
		m.logger.Debug("command failed", "argv", argv, "status", status)
	}
	return ok
}
