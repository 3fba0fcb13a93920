//go:build !linux
// +build !linux

package ctlplane

import "net"

// linkPresent reports whether a network interface currently exists
// (portable fallback).
func linkPresent(name string) bool {
	_, err := net.InterfaceByName(name)
	return err == nil
}
