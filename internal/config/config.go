// Package config defines the daemon configuration schema and its HCL
// loader.
package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"

	"grimm.is/portcullis/internal/brand"
)

// Config is the root configuration.
type Config struct {
	Log     *LogConfig     `hcl:"log,block"`
	Control *ControlConfig `hcl:"control,block"`
	Metrics *MetricsConfig `hcl:"metrics,block"`
	Tools   *ToolsConfig   `hcl:"tools,block"`
	Exec    *ExecConfig    `hcl:"exec,block"`
}

// LogConfig controls daemon logging.
type LogConfig struct {
	Level string `hcl:"level,optional"` // debug, info, warn, error
	JSON  bool   `hcl:"json,optional"`
}

// ControlConfig controls the RPC socket.
type ControlConfig struct {
	SocketPath string `hcl:"socket_path,optional"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `hcl:"enabled,optional"`
	Listen  string `hcl:"listen,optional"`
}

// ToolsConfig overrides the external tool locations.
type ToolsConfig struct {
	IPTables  string `hcl:"iptables,optional"`
	IP6Tables string `hcl:"ip6tables,optional"`
	IP        string `hcl:"ip,optional"`
}

// ExecConfig controls how the external tools are launched.
type ExecConfig struct {
	// User the tools run as after dropping privileges. The network
	// capabilities are retained regardless.
	User string `hcl:"user,optional"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log:     &LogConfig{Level: "info"},
		Control: &ControlConfig{SocketPath: brand.GetSocketPath()},
		Metrics: &MetricsConfig{Enabled: false, Listen: "127.0.0.1:9477"},
		Tools: &ToolsConfig{
			IPTables:  "/sbin/iptables",
			IP6Tables: "/sbin/ip6tables",
			IP:        "/bin/ip",
		},
		Exec: &ExecConfig{User: "nobody"},
	}
}

// applyDefaults fills in any block or field the file left unset.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Log == nil {
		c.Log = def.Log
	} else if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Control == nil {
		c.Control = def.Control
	} else if c.Control.SocketPath == "" {
		c.Control.SocketPath = def.Control.SocketPath
	}
	if c.Metrics == nil {
		c.Metrics = def.Metrics
	} else if c.Metrics.Listen == "" {
		c.Metrics.Listen = def.Metrics.Listen
	}
	if c.Tools == nil {
		c.Tools = def.Tools
	} else {
		if c.Tools.IPTables == "" {
			c.Tools.IPTables = def.Tools.IPTables
		}
		if c.Tools.IP6Tables == "" {
			c.Tools.IP6Tables = def.Tools.IP6Tables
		}
		if c.Tools.IP == "" {
			c.Tools.IP = def.Tools.IP
		}
	}
	if c.Exec == nil {
		c.Exec = def.Exec
	} else if c.Exec.User == "" {
		c.Exec.User = def.Exec.User
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}

	for name, path := range map[string]string{
		"iptables":  c.Tools.IPTables,
		"ip6tables": c.Tools.IP6Tables,
		"ip":        c.Tools.IP,
	} {
		if !filepath.IsAbs(path) {
			return fmt.Errorf("tool path for %s must be absolute, got %q", name, path)
		}
	}

	if c.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(c.Metrics.Listen); err != nil {
			return fmt.Errorf("invalid metrics listen address %q: %w", c.Metrics.Listen, err)
		}
	}

	if c.Exec.User == "" {
		return fmt.Errorf("exec user must not be empty")
	}

	return nil
}
