package cmd

import (
	"fmt"
	"os"
)

// RunStatus queries the daemon for current status and prints it.
func RunStatus() {
	client := connect()
	defer client.Close()

	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get status: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Portcullis Status ===")
	fmt.Println()
	if status.Running {
		fmt.Println("Status:   RUNNING")
	} else {
		fmt.Println("Status:   STOPPED")
	}
	fmt.Printf("Version:  %s\n", status.Version)
	fmt.Printf("Uptime:   %s\n", status.Uptime)
	fmt.Printf("Holes:    %d tcp, %d udp\n", status.TCPHoles, status.UDPHoles)
	if status.IPv6Active {
		fmt.Println("IPv6:     active")
	} else {
		fmt.Println("IPv6:     not yet active")
	}
	fmt.Println()

	holes, err := client.ListHoles()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to list holes: %v\n", err)
		return
	}
	if len(holes) == 0 {
		fmt.Println("No holes punched.")
		return
	}
	fmt.Println("Holes:")
	for _, h := range holes {
		iface := h.Interface
		if iface == "" {
			iface = "(all)"
		}
		note := ""
		if h.Interface != "" && !h.InterfacePresent {
			note = "  [interface absent]"
		}
		fmt.Printf("  %-4s %5d  %s%s\n", h.Protocol, h.Port, iface, note)
	}
}
