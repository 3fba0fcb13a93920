package firewall

import "grimm.is/portcullis/internal/metrics"

// RequestVpnSetup routes traffic owned by the given users through
// ifname. On any failure the rules applied so far are unwound and the
// whole request fails.
func (m *Manager) RequestVpnSetup(usernames []string, ifname string) bool {
	ok := m.applyVpnSetup(usernames, ifname, true)
	metrics.GetRegistry().VpnSetupTotal.WithLabelValues("enable", metrics.ResultLabel(ok)).Inc()
	return ok
}

// RemoveVpnSetup removes the routing state installed by a prior
// RequestVpnSetup. Every removal is attempted even after failures; the
// result reports whether all of them succeeded.
func (m *Manager) RemoveVpnSetup(usernames []string, ifname string) bool {
	ok := m.applyVpnSetup(usernames, ifname, false)
	metrics.GetRegistry().VpnSetupTotal.WithLabelValues("disable", metrics.ResultLabel(ok)).Inc()
	return ok
}

// applyVpnSetup installs or removes the three rule layers: the ip rules
// selecting marked traffic into the VPN routing table, the NAT
// masquerade on the tunnel interface, and one mangle mark rule per
// user. Enable short-circuits and unwinds on the first failure; disable
// keeps going and reports whether everything came out.
func (m *Manager) applyVpnSetup(usernames []string, ifname string, add bool) bool {
	allOK := true
	var marked []string

	// On enable, a failure past the first step unwinds by re-entering
	// with add=false for the users marked so far. The unwind removes
	// every layer, which on a partial enable means deleting rules that
	// were never installed; those deletes fail harmlessly.
	unwind := func() {
		metrics.GetRegistry().VpnRollbackTotal.Inc()
		m.applyVpnSetup(marked, ifname, false)
	}

	// Both policy-routing rule families are required: without either
	// rule, marked traffic of that family bypasses the tunnel table.
	if !m.run(userTrafficRuleArgs(m.paths.IP, familyIPv4, add)) {
		m.logger.Error("ip rule failed", "family", familyIPv4, "add", add)
		if add {
			// Nothing installed yet, nothing to undo
			return false
		}
		allOK = false
	}
	if !m.run(userTrafficRuleArgs(m.paths.IP, familyIPv6, add)) {
		m.logger.Error("ip rule failed", "family", familyIPv6, "add", add)
		if add {
			unwind()
			return false
		}
		allOK = false
	}

	if !m.applyMasquerade(ifname, add) {
		if add {
			unwind()
			return false
		}
		allOK = false
	}

	for _, user := range usernames {
		if !m.applyUserMark(user, add) {
			if add {
				m.logger.Error("marking traffic failed, unwinding", "user", user, "interface", ifname)
				unwind()
				return false
			}
			allOK = false
			continue
		}
		if add {
			marked = append(marked, user)
		}
	}

	if !allOK {
		m.logger.Error("vpn teardown incomplete", "interface", ifname)
	}
	return allOK
}

// The netfilter layer helpers apply the IPv4 and IPv6 variants of
// their rule. Both families are always attempted. On add, only the
// IPv4 outcome decides success, so hosts without a working IPv6
// netfilter still get a functional IPv4 tunnel; on delete, a failure
// of either family counts, because a removal that left a rule behind
// is not a success.

// applyMasquerade manages the NAT masquerade on the tunnel interface
// for both families.
func (m *Manager) applyMasquerade(ifname string, add bool) bool {
	ok4 := m.run(masqueradeArgs(m.paths.IPTables, add, ifname))
	if !ok4 {
		m.logger.Error("masquerade failed", "family", familyIPv4, "interface", ifname, "add", add)
	}
	ok6 := m.run(masqueradeArgs(m.paths.IP6Tables, add, ifname))
	if !ok6 {
		m.logger.Warn("masquerade failed", "family", familyIPv6, "interface", ifname, "add", add)
	}
	if add {
		return ok4
	}
	return ok4 && ok6
}

// applyUserMark manages the per-user mangle mark rules for both
// families.
func (m *Manager) applyUserMark(username string, add bool) bool {
	ok4 := m.run(userMarkArgs(m.paths.IPTables, add, username))
	if !ok4 {
		m.logger.Error("user mark failed", "family", familyIPv4, "user", username, "add", add)
	}
	ok6 := m.run(userMarkArgs(m.paths.IP6Tables, add, username))
	if !ok6 {
		m.logger.Warn("user mark failed", "family", familyIPv6, "user", username, "add", add)
	}
	if add {
		return ok4
	}
	return ok4 && ok6
}
