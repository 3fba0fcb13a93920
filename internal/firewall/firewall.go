package firewall

// Protocol is a transport protocol with its own hole registry.
type Protocol string

const (
	ProtocolTCP Protocol = "tcp"
	ProtocolUDP Protocol = "udp"
)

// Hole identifies one allowed inbound flow. Membership is exact-match;
// there are no wildcard or merge semantics.
type Hole struct {
	Port      uint16
	Interface string
}

// RoutingMark is a firewall mark matched by ip rule for routing
// decisions.
type RoutingMark uint32

// RoutingTable is a policy routing table ID.
type RoutingTable uint32

// Marks and tables used for user VPN traffic. The mark set by the
// mangle OUTPUT rule and the mark matched by the ip rule must agree.
const (
	MarkUserTraffic  RoutingMark  = 1
	TableUserTraffic RoutingTable = 1
)

// ToolPaths holds the filesystem locations of the external tools.
type ToolPaths struct {
	IPTables  string
	IP6Tables string
	IP        string
}

// DefaultToolPaths returns the standard tool locations.
func DefaultToolPaths() ToolPaths {
	return ToolPaths{
		IPTables:  "/sbin/iptables",
		IP6Tables: "/sbin/ip6tables",
		IP:        "/bin/ip",
	}
}

type ipFamily int

const (
	familyIPv4 ipFamily = iota
	familyIPv6
)

func (f ipFamily) String() string {
	if f == familyIPv6 {
		return "IPv6"
	}
	return "IPv4"
}
