package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"grimm.is/portcullis/cmd"
	"grimm.is/portcullis/internal/brand"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "start":
		startFlags := flag.NewFlagSet("start", flag.ExitOnError)
		configFile := startFlags.String("config", brand.DefaultConfigPath(), "Configuration file")
		startFlags.StringVar(configFile, "c", brand.DefaultConfigPath(), "Configuration file (short)")
		startFlags.Parse(os.Args[2:])

		if err := cmd.RunStart(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Start failed: %v\n", err)
			os.Exit(1)
		}

	case "punch", "plug":
		op := os.Args[1]
		holeFlags := flag.NewFlagSet(op, flag.ExitOnError)
		iface := holeFlags.String("interface", "", "Restrict to one interface (default: all)")
		holeFlags.StringVar(iface, "i", "", "Restrict to one interface (short)")
		holeFlags.Parse(os.Args[2:])

		if holeFlags.NArg() != 1 {
			fmt.Fprintf(os.Stderr, "Usage: %s %s [-i iface] <proto>/<port>   e.g. %s %s tcp/8080\n",
				brand.BinaryName, op, brand.BinaryName, op)
			os.Exit(1)
		}
		proto, port, err := parseHoleSpec(holeFlags.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

		run := cmd.RunPunch
		if op == "plug" {
			run = cmd.RunPlug
		}
		if err := run(proto, port, *iface); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

	case "vpn":
		if len(os.Args) < 3 || (os.Args[2] != "enable" && os.Args[2] != "disable") {
			fmt.Fprintf(os.Stderr, "Usage: %s vpn enable|disable -interface tun0 -users alice,bob\n", brand.BinaryName)
			os.Exit(1)
		}
		action := os.Args[2]
		vpnFlags := flag.NewFlagSet("vpn "+action, flag.ExitOnError)
		iface := vpnFlags.String("interface", "", "Tunnel interface")
		vpnFlags.StringVar(iface, "i", "", "Tunnel interface (short)")
		users := vpnFlags.String("users", "", "Comma-separated usernames")
		vpnFlags.StringVar(users, "u", "", "Comma-separated usernames (short)")
		vpnFlags.Parse(os.Args[3:])

		usernames := splitUsers(*users)
		if *iface == "" || len(usernames) == 0 {
			fmt.Fprintf(os.Stderr, "vpn %s requires -interface and -users\n", action)
			os.Exit(1)
		}

		run := cmd.RunVpnEnable
		if action == "disable" {
			run = cmd.RunVpnDisable
		}
		if err := run(usernames, *iface); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

	case "status":
		cmd.RunStatus()

	case "version", "--version", "-v":
		cmd.RunVersion()

	case "help", "--help", "-h":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// parseHoleSpec parses "tcp/8080" into its protocol and port.
func parseHoleSpec(spec string) (string, uint16, error) {
	proto, portStr, ok := strings.Cut(spec, "/")
	if !ok {
		return "", 0, fmt.Errorf("invalid hole spec %q (want proto/port, e.g. tcp/8080)", spec)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || port == 0 {
		return "", 0, fmt.Errorf("invalid port %q", portStr)
	}
	return strings.ToLower(proto), uint16(port), nil
}

func splitUsers(s string) []string {
	var out []string
	for _, u := range strings.Split(s, ",") {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func printUsage() {
	fmt.Printf(`%s - privileged firewall hole and VPN routing manager

Usage:
  %s start [-c config.hcl]           Run the daemon in the foreground
  %s punch [-i iface] <proto>/<port> Open inbound traffic to a port
  %s plug  [-i iface] <proto>/<port> Close a previously punched hole
  %s vpn enable  -i tun0 -u a,b      Route users' traffic through a tunnel
  %s vpn disable -i tun0 -u a,b      Remove the users' tunnel routing
  %s status                          Show daemon status and open holes
  %s version                         Show build information
`, brand.Name, brand.BinaryName, brand.BinaryName, brand.BinaryName,
		brand.BinaryName, brand.BinaryName, brand.BinaryName, brand.BinaryName)
}
