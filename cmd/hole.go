package cmd

import (
	"fmt"
	"os"

	"grimm.is/portcullis/internal/ctlplane"
)

func connect() *ctlplane.Client {
	client, err := ctlplane.NewClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to control plane: %v\n", err)
		fmt.Fprintf(os.Stderr, "Is the daemon running? Start with: portcullis start\n")
		os.Exit(1)
	}
	return client
}

// RunPunch asks the daemon to open a hole.
func RunPunch(protocol string, port uint16, iface string) error {
	client := connect()
	defer client.Close()

	ok, err := client.PunchHole(protocol, port, iface)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("punch %s/%d refused", protocol, port)
	}
	fmt.Printf("Punched %s/%d%s\n", protocol, port, ifaceSuffix(iface))
	return nil
}

// RunPlug asks the daemon to close a hole.
func RunPlug(protocol string, port uint16, iface string) error {
	client := connect()
	defer client.Close()

	ok, err := client.PlugHole(protocol, port, iface)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("plug %s/%d refused (was it punched with the same interface?)", protocol, port)
	}
	fmt.Printf("Plugged %s/%d%s\n", protocol, port, ifaceSuffix(iface))
	return nil
}

func ifaceSuffix(iface string) string {
	if iface == "" {
		return ""
	}
	return " on " + iface
}
