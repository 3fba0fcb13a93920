package cmd

import "fmt"

// RunVpnEnable asks the daemon to route the given users through iface.
func RunVpnEnable(usernames []string, iface string) error {
	client := connect()
	defer client.Close()

	ok, err := client.RequestVpnSetup(usernames, iface)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("vpn setup on %s refused (rolled back)", iface)
	}
	fmt.Printf("VPN routing enabled on %s for %d user(s)\n", iface, len(usernames))
	return nil
}

// RunVpnDisable asks the daemon to remove the routing for the given
// users.
func RunVpnDisable(usernames []string, iface string) error {
	client := connect()
	defer client.Close()

	ok, err := client.RemoveVpnSetup(usernames, iface)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("vpn teardown on %s incomplete", iface)
	}
	fmt.Printf("VPN routing disabled on %s\n", iface)
	return nil
}
