package firewall

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func expectUserTrafficRule(r *MockRunner, add bool, status4, status6 int) {
	expectRun(r, userTrafficRuleArgs("/bin/ip", familyIPv4, add), status4)
	expectRun(r, userTrafficRuleArgs("/bin/ip", familyIPv6, add), status6)
}

func expectMasquerade(r *MockRunner, add bool, iface string, status4, status6 int) {
	expectRun(r, masqueradeArgs("/sbin/iptables", add, iface), status4)
	expectRun(r, masqueradeArgs("/sbin/ip6tables", add, iface), status6)
}

func expectUserMark(r *MockRunner, add bool, user string, status4, status6 int) {
	expectRun(r, userMarkArgs("/sbin/iptables", add, user), status4)
	expectRun(r, userMarkArgs("/sbin/ip6tables", add, user), status6)
}

func TestRequestVpnSetupSucceeds(t *testing.T) {
	m, r := testManager(t)
	expectUserTrafficRule(r, true, 0, 0)
	expectMasquerade(r, true, "tun0", 0, 0)
	expectUserMark(r, true, "alice", 0, 0)
	expectUserMark(r, true, "bob", 0, 0)

	assert.True(t, m.RequestVpnSetup([]string{"alice", "bob"}, "tun0"))
	r.AssertExpectations(t)
}

func TestRequestVpnSetupIPv6BestEffortLayers(t *testing.T) {
	m, r := testManager(t)
	// IPv6 masquerade and mark failures do not fail the enable; only
	// the routing rules require both families.
	expectUserTrafficRule(r, true, 0, 0)
	expectMasquerade(r, true, "tun0", 0, 1)
	expectUserMark(r, true, "alice", 0, 1)

	assert.True(t, m.RequestVpnSetup([]string{"alice"}, "tun0"))
	r.AssertExpectations(t)
}

func TestRequestVpnSetupPassesInterfaceThrough(t *testing.T) {
	m, r := testManager(t)
	// The interface name is handed to the external tool verbatim; the
	// tool's exit status is the arbiter.
	expectUserTrafficRule(r, true, 0, 0)
	expectMasquerade(r, true, "weird$name", 1, 0)
	expectUserTrafficRule(r, false, 0, 0)
	expectMasquerade(r, false, "weird$name", 0, 0)

	assert.False(t, m.RequestVpnSetup([]string{"alice"}, "weird$name"))
	r.AssertExpectations(t)
}

func TestRequestVpnSetupIPv4RuleFailureAborts(t *testing.T) {
	m, r := testManager(t)
	// Nothing was installed, so nothing is undone.
	expectRun(r, userTrafficRuleArgs("/bin/ip", familyIPv4, true), 1)

	assert.False(t, m.RequestVpnSetup([]string{"alice"}, "tun0"))
	r.AssertExpectations(t)
}

func TestRequestVpnSetupIPv6RuleFailureUnwinds(t *testing.T) {
	m, r := testManager(t)
	expectUserTrafficRule(r, true, 0, 1)
	// The unwind attempts every layer, including ones never installed.
	expectUserTrafficRule(r, false, 0, 0)
	expectMasquerade(r, false, "tun0", 0, 0)

	assert.False(t, m.RequestVpnSetup([]string{"alice"}, "tun0"))
	r.AssertExpectations(t)
}

func TestRequestVpnSetupMasqueradeFailureUnwinds(t *testing.T) {
	m, r := testManager(t)
	expectUserTrafficRule(r, true, 0, 0)
	expectMasquerade(r, true, "tun0", 1, 0)
	expectUserTrafficRule(r, false, 0, 0)
	expectMasquerade(r, false, "tun0", 0, 0)

	assert.False(t, m.RequestVpnSetup([]string{"alice"}, "tun0"))
	r.AssertExpectations(t)
}

func TestRequestVpnSetupMarkFailureUnwindsMarkedUsers(t *testing.T) {
	m, r := testManager(t)
	expectUserTrafficRule(r, true, 0, 0)
	expectMasquerade(r, true, "tun0", 0, 0)
	expectUserMark(r, true, "alice", 0, 0)
	expectUserMark(r, true, "bob", 1, 0)
	// Unwind: only alice was marked; carol is never touched.
	expectUserTrafficRule(r, false, 0, 0)
	expectMasquerade(r, false, "tun0", 0, 0)
	expectUserMark(r, false, "alice", 0, 0)

	assert.False(t, m.RequestVpnSetup([]string{"alice", "bob", "carol"}, "tun0"))
	r.AssertExpectations(t)
}

func TestRemoveVpnSetupSucceeds(t *testing.T) {
	m, r := testManager(t)
	expectUserTrafficRule(r, false, 0, 0)
	expectMasquerade(r, false, "tun0", 0, 0)
	expectUserMark(r, false, "alice", 0, 0)
	expectUserMark(r, false, "bob", 0, 0)

	assert.True(t, m.RemoveVpnSetup([]string{"alice", "bob"}, "tun0"))
	r.AssertExpectations(t)
}

func TestRemoveVpnSetupAttemptsEverythingOnFailure(t *testing.T) {
	m, r := testManager(t)
	// Every removal fails; every removal is still attempted exactly
	// once and the overall result reports failure.
	expectUserTrafficRule(r, false, 1, 1)
	expectMasquerade(r, false, "tun0", 1, 1)
	expectUserMark(r, false, "alice", 1, 1)
	expectUserMark(r, false, "bob", 1, 1)

	assert.False(t, m.RemoveVpnSetup([]string{"alice", "bob"}, "tun0"))
	r.AssertExpectations(t)
}

func TestRemoveVpnSetupIPv6RemovalFailures(t *testing.T) {
	m, r := testManager(t)
	// Removals that leave IPv6 rules behind are not a success, even
	// though IPv6 failures are tolerated on enable.
	expectUserTrafficRule(r, false, 0, 0)
	expectMasquerade(r, false, "tun0", 0, 1)
	expectUserMark(r, false, "alice", 0, 1)

	assert.False(t, m.RemoveVpnSetup([]string{"alice"}, "tun0"))
	r.AssertExpectations(t)
}

func TestRemoveVpnSetupPartialFailure(t *testing.T) {
	m, r := testManager(t)
	expectUserTrafficRule(r, false, 0, 0)
	expectMasquerade(r, false, "tun0", 0, 0)
	expectUserMark(r, false, "alice", 1, 0)
	expectUserMark(r, false, "bob", 0, 0)

	assert.False(t, m.RemoveVpnSetup([]string{"alice", "bob"}, "tun0"))
	r.AssertExpectations(t)
}

func TestVpnRuleArgv(t *testing.T) {
	assert.Equal(t,
		[]string{"/bin/ip", "rule", "add", "fwmark", "1", "table", "1"},
		userTrafficRuleArgs("/bin/ip", familyIPv4, true))
	assert.Equal(t,
		[]string{"/bin/ip", "-6", "rule", "delete", "fwmark", "1", "table", "1"},
		userTrafficRuleArgs("/bin/ip", familyIPv6, false))
	assert.Equal(t,
		[]string{"/sbin/iptables", "-t", "nat", "-A", "POSTROUTING", "-o", "tun0", "-j", "MASQUERADE"},
		masqueradeArgs("/sbin/iptables", true, "tun0"))
	assert.Equal(t,
		[]string{"/sbin/ip6tables", "-t", "mangle", "-D", "OUTPUT", "-m", "owner", "--uid-owner", "alice", "-j", "MARK", "--set-mark", "1"},
		userMarkArgs("/sbin/ip6tables", false, "alice"))
}
