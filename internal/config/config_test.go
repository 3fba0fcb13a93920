package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFullConfig(t *testing.T) {
	hcl := `
log {
  level = "debug"
  json  = true
}

control {
  socket_path = "/tmp/test.sock"
}

metrics {
  enabled = true
  listen  = "127.0.0.1:9999"
}

tools {
  iptables  = "/usr/sbin/iptables"
  ip6tables = "/usr/sbin/ip6tables"
  ip        = "/usr/bin/ip"
}

exec {
  user = "daemon"
}
`
	cfg, err := Load([]byte(hcl), "test.hcl")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, "/tmp/test.sock", cfg.Control.SocketPath)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "127.0.0.1:9999", cfg.Metrics.Listen)
	assert.Equal(t, "/usr/sbin/iptables", cfg.Tools.IPTables)
	assert.Equal(t, "/usr/bin/ip", cfg.Tools.IP)
	assert.Equal(t, "daemon", cfg.Exec.User)
}

func TestLoadEmptyConfigGetsDefaults(t *testing.T) {
	cfg, err := Load([]byte(""), "test.hcl")
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Log.Level, cfg.Log.Level)
	assert.Equal(t, def.Control.SocketPath, cfg.Control.SocketPath)
	assert.Equal(t, def.Tools.IPTables, cfg.Tools.IPTables)
	assert.Equal(t, def.Exec.User, cfg.Exec.User)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadPartialBlockKeepsDefaults(t *testing.T) {
	hcl := `
log {
  json = true
}

tools {
  ip = "/usr/bin/ip"
}
`
	cfg, err := Load([]byte(hcl), "test.hcl")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, "/sbin/iptables", cfg.Tools.IPTables)
	assert.Equal(t, "/usr/bin/ip", cfg.Tools.IP)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		hcl  string
	}{
		{"bad log level", `log { level = "verbose" }`},
		{"relative tool path", `tools { iptables = "iptables" }`},
		{"bad metrics listen", "metrics {\n  enabled = true\n  listen  = \"not an address\"\n}"},
		{"parse error", `log {`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.hcl), "test.hcl")
			assert.Error(t, err)
		})
	}
}

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default().Log.Level, cfg.Log.Level)
}
