package ctlplane

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grimm.is/portcullis/internal/firewall"
	"grimm.is/portcullis/internal/logging"
)

// TestServerRoundTrip drives the whole RPC surface over a real Unix
// socket. One test covers everything because rpc.Register binds the
// first server instance process-wide.
func TestServerRoundTrip(t *testing.T) {
	runner := &firewall.MockRunner{}
	runner.On("Run", mock.Anything, mock.Anything).Return(0)

	logger := logging.New(logging.Config{Level: logging.LevelError})
	fw := firewall.NewManager(runner, logger, firewall.DefaultToolPaths())

	socketPath := filepath.Join(t.TempDir(), "ctl.sock")
	srv := NewServer(fw, logger, socketPath)
	require.NoError(t, srv.Start())
	defer srv.Stop()

	client, err := NewClientAt(socketPath)
	require.NoError(t, err)
	defer client.Close()

	// Punch
	ok, err := client.PunchHole("tcp", 80, "")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = client.PunchHole("udp", 53, "eth0")
	require.NoError(t, err)
	assert.True(t, ok)

	// Invalid protocol is rejected server-side without an RPC error
	ok, err = client.PunchHole("icmp", 8, "")
	require.NoError(t, err)
	assert.False(t, ok)

	// List
	holes, err := client.ListHoles()
	require.NoError(t, err)
	require.Len(t, holes, 2)
	assert.Equal(t, "tcp", holes[0].Protocol)
	assert.Equal(t, uint16(80), holes[0].Port)
	assert.True(t, holes[0].InterfacePresent)
	assert.Equal(t, "udp", holes[1].Protocol)
	assert.Equal(t, uint16(53), holes[1].Port)

	// Status
	status, err := client.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.Equal(t, 1, status.TCPHoles)
	assert.Equal(t, 1, status.UDPHoles)
	// Every mocked ip6tables call succeeded, so the latch is set
	assert.True(t, status.IPv6Active)

	// VPN enable and disable
	ok, err = client.RequestVpnSetup([]string{"alice"}, "tun0")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = client.RemoveVpnSetup([]string{"alice"}, "tun0")
	require.NoError(t, err)
	assert.True(t, ok)

	// Plug
	ok, err = client.PlugHole("tcp", 80, "")
	require.NoError(t, err)
	assert.True(t, ok)
	// Plugging again fails: the hole is no longer tracked
	ok, err = client.PlugHole("tcp", 80, "")
	require.NoError(t, err)
	assert.False(t, ok)

	holes, err = client.ListHoles()
	require.NoError(t, err)
	assert.Len(t, holes, 1)
}
