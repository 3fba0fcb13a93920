// Package validation holds input validators shared by the firewall core
// and the control plane. Everything that ends up on an external tool's
// command line is validated here first.
package validation

import (
	"fmt"
	"strings"
)

// Interface names must be shorter than IFNAMSIZ (16 in recent kernels).
// See https://man7.org/linux/man-pages/man7/netdevice.7.html
const interfaceNameSize = 16

// ValidateInterfaceName validates a network interface name.
// Permitted: alphanumeric characters plus embedded dashes and periods.
// A leading or trailing dash/period is rejected. The empty string is
// valid and means "any interface" (no -i match is emitted for it).
func ValidateInterfaceName(name string) error {
	if len(name) >= interfaceNameSize {
		return fmt.Errorf("interface name too long (max %d characters): %s", interfaceNameSize-1, name)
	}

	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") ||
		strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return fmt.Errorf("interface name must not start or end with '-' or '.': %s", name)
	}

	for _, c := range name {
		if !isAlnum(c) && c != '-' && c != '.' {
			return fmt.Errorf("invalid character %q in interface name: %s", c, name)
		}
	}

	return nil
}

func isAlnum(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// ValidatePort validates a TCP/UDP port. Port 0 is the reserved "no port"
// sentinel and never valid for a hole.
func ValidatePort(port uint16) error {
	if port == 0 {
		return fmt.Errorf("port 0 is not a valid TCP/UDP port")
	}
	return nil
}

// ValidateProtocol validates a transport protocol name.
func ValidateProtocol(proto string) error {
	switch strings.ToLower(proto) {
	case "tcp", "udp":
		return nil
	}
	return fmt.Errorf("invalid protocol: %s (must be tcp or udp)", proto)
}
