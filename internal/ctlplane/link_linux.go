//go:build linux
// +build linux

package ctlplane

import "github.com/vishvananda/netlink"

// linkPresent reports whether a network interface currently exists.
// Used for status reporting only, never for validation.
func linkPresent(name string) bool {
	_, err := netlink.LinkByName(name)
	return err == nil
}
