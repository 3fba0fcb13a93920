//go:build linux
// +build linux

package jail

import "golang.org/x/sys/unix"

func init() {
	// Keep the portable constants honest against the kernel headers.
	if CapNetAdmin != unix.CAP_NET_ADMIN || CapNetRaw != unix.CAP_NET_RAW {
		panic("jail: capability constants out of sync with linux headers")
	}
}
