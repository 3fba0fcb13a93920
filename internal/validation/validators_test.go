package validation

import (
	"strings"
	"testing"
)

func TestValidateInterfaceName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// Happy paths
		{"simple", "shortname", false},
		{"middle dash", "middle-dash", false},
		{"middle dot", "middle.dot", false},
		{"vlan style", "eth0.100", false},
		{"max length", "abcdefghijklmno", false}, // 15 chars
		{"empty means any", "", false},

		// Sad paths
		{"too long", "reallylonginterfacename", true},
		{"exactly ifnamsiz", "abcdefghijklmnop", true}, // 16 chars
		{"space", "with spaces", true},
		{"symbol", "with$ymbols", true},
		{"start dash", "-startdash", true},
		{"end dash", "enddash-", true},
		{"start dot", ".startdot", true},
		{"end dot", "enddot.", true},
		{"underscore", "under_score", true},
		{"semicolon injection", "eth0;rm", true},
		{"newline", "eth0\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInterfaceName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInterfaceName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePort(t *testing.T) {
	if err := ValidatePort(0); err == nil {
		t.Error("port 0 should be rejected")
	}
	if err := ValidatePort(1); err != nil {
		t.Errorf("port 1 should be valid: %v", err)
	}
	if err := ValidatePort(65535); err != nil {
		t.Errorf("port 65535 should be valid: %v", err)
	}
}

func TestValidateProtocol(t *testing.T) {
	for _, p := range []string{"tcp", "udp", "TCP", "UDP"} {
		if err := ValidateProtocol(p); err != nil {
			t.Errorf("protocol %s should be valid: %v", p, err)
		}
	}
	for _, p := range []string{"", "icmp", "sctp", "tcp "} {
		if err := ValidateProtocol(p); err == nil {
			t.Errorf("protocol %q should be rejected", p)
		} else if !strings.Contains(err.Error(), "invalid protocol") {
			t.Errorf("unexpected error for %q: %v", p, err)
		}
	}
}
