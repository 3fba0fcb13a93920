package ctlplane

import (
	"fmt"
	"net/rpc"
	"strings"
	"sync"

	"grimm.is/portcullis/internal/brand"
)

// Client is the RPC client for communicating with the daemon.
type Client struct {
	client     *rpc.Client
	socketPath string
	mu         sync.RWMutex
}

// NewClient connects to the daemon on the default socket.
func NewClient() (*Client, error) {
	return NewClientAt(brand.GetSocketPath())
}

// NewClientAt connects to the daemon on a specific socket.
func NewClientAt(socketPath string) (*Client, error) {
	client, err := rpc.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to control plane at %s: %w", socketPath, err)
	}
	return &Client{client: client, socketPath: socketPath}, nil
}

// Close closes the RPC connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// call wraps the RPC call with reconnection logic.
func (c *Client) call(serviceMethod string, args any, reply any) error {
	c.mu.RLock()
	client := c.client
	c.mu.RUnlock()

	if client == nil {
		if err := c.reconnect(nil); err != nil {
			return err
		}
		c.mu.RLock()
		client = c.client
		c.mu.RUnlock()
	}

	err := client.Call(serviceMethod, args, reply)
	if err == nil {
		return nil
	}

	if err == rpc.ErrShutdown || isNetworkError(err) {
		// Pass the failed client so concurrent callers don't race on
		// the same reconnect.
		if recErr := c.reconnect(client); recErr != nil {
			return fmt.Errorf("RPC call failed (%v) and reconnection failed: %w", err, recErr)
		}
		c.mu.RLock()
		client = c.client
		c.mu.RUnlock()
		return client.Call(serviceMethod, args, reply)
	}

	return err
}

// reconnect attempts to establish a new connection.
func (c *Client) reconnect(oldClient *rpc.Client) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != oldClient && c.client != nil {
		// Someone else already reconnected
		return nil
	}

	if c.client != nil {
		c.client.Close()
	}

	client, err := rpc.Dial("unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to reconnect to control plane: %w", err)
	}

	c.client = client
	return nil
}

func isNetworkError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "connection is shut down") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "bad file descriptor") ||
		strings.Contains(msg, "unexpected EOF") ||
		strings.Contains(msg, "use of closed network connection")
}

// PunchHole opens inbound traffic to a port.
func (c *Client) PunchHole(protocol string, port uint16, iface string) (bool, error) {
	var reply PunchHoleReply
	args := PunchHoleArgs{Protocol: protocol, Port: port, Interface: iface}
	if err := c.call("Server.PunchHole", &args, &reply); err != nil {
		return false, err
	}
	return reply.Success, nil
}

// PlugHole closes a previously punched hole.
func (c *Client) PlugHole(protocol string, port uint16, iface string) (bool, error) {
	var reply PlugHoleReply
	args := PlugHoleArgs{Protocol: protocol, Port: port, Interface: iface}
	if err := c.call("Server.PlugHole", &args, &reply); err != nil {
		return false, err
	}
	return reply.Success, nil
}

// RequestVpnSetup enables VPN policy routing for a set of users.
func (c *Client) RequestVpnSetup(usernames []string, iface string) (bool, error) {
	var reply VpnSetupReply
	args := VpnSetupArgs{Usernames: usernames, Interface: iface}
	if err := c.call("Server.RequestVpnSetup", &args, &reply); err != nil {
		return false, err
	}
	return reply.Success, nil
}

// RemoveVpnSetup disables VPN policy routing for a set of users.
func (c *Client) RemoveVpnSetup(usernames []string, iface string) (bool, error) {
	var reply VpnSetupReply
	args := VpnSetupArgs{Usernames: usernames, Interface: iface}
	if err := c.call("Server.RemoveVpnSetup", &args, &reply); err != nil {
		return false, err
	}
	return reply.Success, nil
}

// ListHoles returns every tracked hole.
func (c *Client) ListHoles() ([]HoleInfo, error) {
	var reply ListHolesReply
	if err := c.call("Server.ListHoles", &Empty{}, &reply); err != nil {
		return nil, err
	}
	return reply.Holes, nil
}

// GetStatus returns the daemon status summary.
func (c *Client) GetStatus() (*Status, error) {
	var reply GetStatusReply
	if err := c.call("Server.GetStatus", &Empty{}, &reply); err != nil {
		return nil, err
	}
	return &reply.Status, nil
}
