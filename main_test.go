package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHoleSpec(t *testing.T) {
	tests := []struct {
		spec    string
		proto   string
		port    uint16
		wantErr bool
	}{
		{"tcp/8080", "tcp", 8080, false},
		{"UDP/53", "udp", 53, false},
		{"tcp/65535", "tcp", 65535, false},
		{"tcp/0", "", 0, true},
		{"tcp/65536", "", 0, true},
		{"tcp", "", 0, true},
		{"tcp/abc", "", 0, true},
		{"", "", 0, true},
	}
	for _, tt := range tests {
		proto, port, err := parseHoleSpec(tt.spec)
		if tt.wantErr {
			assert.Error(t, err, tt.spec)
			continue
		}
		assert.NoError(t, err, tt.spec)
		assert.Equal(t, tt.proto, proto)
		assert.Equal(t, tt.port, port)
	}
}

func TestSplitUsers(t *testing.T) {
	assert.Equal(t, []string{"alice", "bob"}, splitUsers("alice, bob"))
	assert.Equal(t, []string{"alice"}, splitUsers("alice,"))
	assert.Nil(t, splitUsers(""))
	assert.Nil(t, splitUsers(" , "))
}
