package ctlplane

import (
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"grimm.is/portcullis/internal/brand"
	"grimm.is/portcullis/internal/firewall"
	"grimm.is/portcullis/internal/logging"
	"grimm.is/portcullis/internal/validation"
)

// Server is the privileged control plane RPC server. The firewall
// manager is not safe for concurrent use, so every RPC method holds mu
// for its whole duration; net/rpc serves each connection in its own
// goroutine.
type Server struct {
	fw         *firewall.Manager
	logger     *logging.Logger
	listener   net.Listener
	socketPath string
	startedAt  time.Time

	mu sync.Mutex
}

// NewServer creates a control plane server around a firewall manager.
func NewServer(fw *firewall.Manager, logger *logging.Logger, socketPath string) *Server {
	if logger == nil {
		logger = logging.Default()
	}
	if socketPath == "" {
		socketPath = brand.GetSocketPath()
	}
	return &Server{
		fw:         fw,
		logger:     logger.WithComponent("ctlplane"),
		socketPath: socketPath,
		startedAt:  time.Now(),
	}
}

// Start listens on the Unix socket and serves RPC connections in the
// background.
func (s *Server) Start() error {
	// Remove a stale socket from a previous run
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.socketPath, err)
	}

	// The clients run unprivileged; the socket itself is the access
	// control boundary on this appliance.
	if err := os.Chmod(s.socketPath, 0666); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	return s.StartWithListener(listener)
}

// StartWithListener serves RPC connections on an existing listener.
func (s *Server) StartWithListener(listener net.Listener) error {
	s.listener = listener

	if err := rpc.Register(s); err != nil {
		if err.Error() != "rpc: service already defined: ctlplane.Server" {
			return fmt.Errorf("failed to register RPC service: %w", err)
		}
	}

	s.logger.Info("control plane listening", "addr", listener.Addr())

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					return
				}
				s.logger.Error("accept error", "error", err)
				return
			}
			go func() {
				defer func() {
					if r := recover(); r != nil {
						s.logger.Error("rpc connection handler panicked", "panic", r)
					}
				}()
				rpc.ServeConn(conn)
			}()
		}
	}()

	return nil
}

// Stop closes the listener. In-flight calls finish under mu.
func (s *Server) Stop() {
	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// PunchHole opens inbound traffic to a port.
func (s *Server) PunchHole(args *PunchHoleArgs, reply *PunchHoleReply) error {
	if err := validation.ValidateProtocol(args.Protocol); err != nil {
		s.logger.Error("punch rejected", "error", err)
		reply.Success = false
		return nil
	}
	proto := strings.ToLower(args.Protocol)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch firewall.Protocol(proto) {
	case firewall.ProtocolTCP:
		reply.Success = s.fw.PunchTcpHole(args.Port, args.Interface)
	case firewall.ProtocolUDP:
		reply.Success = s.fw.PunchUdpHole(args.Port, args.Interface)
	}
	s.logger.Audit("punch", fmt.Sprintf("%s/%d", proto, args.Port), map[string]any{
		"interface": args.Interface,
		"success":   reply.Success,
	})
	return nil
}

// PlugHole closes a previously punched hole.
func (s *Server) PlugHole(args *PlugHoleArgs, reply *PlugHoleReply) error {
	if err := validation.ValidateProtocol(args.Protocol); err != nil {
		s.logger.Error("plug rejected", "error", err)
		reply.Success = false
		return nil
	}
	proto := strings.ToLower(args.Protocol)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch firewall.Protocol(proto) {
	case firewall.ProtocolTCP:
		reply.Success = s.fw.PlugTcpHole(args.Port, args.Interface)
	case firewall.ProtocolUDP:
		reply.Success = s.fw.PlugUdpHole(args.Port, args.Interface)
	}
	s.logger.Audit("plug", fmt.Sprintf("%s/%d", proto, args.Port), map[string]any{
		"interface": args.Interface,
		"success":   reply.Success,
	})
	return nil
}

// RequestVpnSetup enables VPN policy routing for a set of users.
func (s *Server) RequestVpnSetup(args *VpnSetupArgs, reply *VpnSetupReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reply.Success = s.fw.RequestVpnSetup(args.Usernames, args.Interface)
	s.logger.Audit("vpn_enable", args.Interface, map[string]any{
		"usernames": args.Usernames,
		"success":   reply.Success,
	})
	return nil
}

// RemoveVpnSetup disables VPN policy routing for a set of users.
func (s *Server) RemoveVpnSetup(args *VpnSetupArgs, reply *VpnSetupReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reply.Success = s.fw.RemoveVpnSetup(args.Usernames, args.Interface)
	s.logger.Audit("vpn_disable", args.Interface, map[string]any{
		"usernames": args.Usernames,
		"success":   reply.Success,
	})
	return nil
}

// ListHoles returns every tracked hole across both protocols.
func (s *Server) ListHoles(args *Empty, reply *ListHolesReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply.Holes = nil
	for _, proto := range []firewall.Protocol{firewall.ProtocolTCP, firewall.ProtocolUDP} {
		for _, h := range s.fw.Holes(proto) {
			reply.Holes = append(reply.Holes, HoleInfo{
				Protocol:         string(proto),
				Port:             h.Port,
				Interface:        h.Interface,
				InterfacePresent: h.Interface == "" || linkPresent(h.Interface),
			})
		}
	}
	sort.Slice(reply.Holes, func(i, j int) bool {
		a, b := reply.Holes[i], reply.Holes[j]
		if a.Protocol != b.Protocol {
			return a.Protocol < b.Protocol
		}
		if a.Port != b.Port {
			return a.Port < b.Port
		}
		return a.Interface < b.Interface
	})
	return nil
}

// GetStatus returns the daemon status summary.
func (s *Server) GetStatus(args *Empty, reply *GetStatusReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply.Status = Status{
		Running:    true,
		Uptime:     formatUptime(time.Since(s.startedAt)),
		Version:    brand.Version,
		TCPHoles:   len(s.fw.Holes(firewall.ProtocolTCP)),
		UDPHoles:   len(s.fw.Holes(firewall.ProtocolUDP)),
		IPv6Active: s.fw.IPv6Enabled(),
		StartedAt:  s.startedAt.UTC().Format(time.RFC3339),
	}
	return nil
}
