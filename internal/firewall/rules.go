package firewall

import "strconv"

// Chains and tables the generated commands operate on.
const (
	chainInput       = "INPUT"
	chainPostrouting = "POSTROUTING"
	chainOutput      = "OUTPUT"
	tableNAT         = "nat"
	tableMangle      = "mangle"
)

// acceptRuleArgs builds the iptables/ip6tables invocation for one ACCEPT
// rule on the INPUT chain. An empty interface matches all interfaces.
// The -w flag makes the tool wait on the xtables lock instead of failing
// under contention from unrelated invocations.
func acceptRuleArgs(tool string, add bool, proto Protocol, port uint16, iface string) []string {
	op := "-D"
	if add {
		op = "-I"
	}
	argv := []string{
		tool,
		op, chainInput,
		"-p", string(proto),
		"--dport", strconv.FormatUint(uint64(port), 10),
	}
	if iface != "" {
		argv = append(argv, "-i", iface)
	}
	argv = append(argv, "-j", "ACCEPT", "-w")
	return argv
}

// masqueradeArgs builds the NAT POSTROUTING masquerade invocation for an
// output interface.
func masqueradeArgs(tool string, add bool, iface string) []string {
	op := "-D"
	if add {
		op = "-A"
	}
	return []string{
		tool,
		"-t", tableNAT,
		op, chainPostrouting,
		"-o", iface,
		"-j", "MASQUERADE",
	}
}

// userMarkArgs builds the mangle OUTPUT invocation that marks traffic
// owned by the given user with MarkUserTraffic.
func userMarkArgs(tool string, add bool, username string) []string {
	op := "-D"
	if add {
		op = "-A"
	}
	return []string{
		tool,
		"-t", tableMangle,
		op, chainOutput,
		"-m", "owner",
		"--uid-owner", username,
		"-j", "MARK",
		"--set-mark", strconv.FormatUint(uint64(MarkUserTraffic), 10),
	}
}

// userTrafficRuleArgs builds the ip rule invocation selecting packets
// carrying MarkUserTraffic into TableUserTraffic.
func userTrafficRuleArgs(ipTool string, family ipFamily, add bool) []string {
	op := "delete"
	if add {
		op = "add"
	}
	argv := []string{ipTool}
	if family == familyIPv6 {
		argv = append(argv, "-6")
	}
	return append(argv,
		"rule", op,
		"fwmark", strconv.FormatUint(uint64(MarkUserTraffic), 10),
		"table", strconv.FormatUint(uint64(TableUserTraffic), 10),
	)
}
