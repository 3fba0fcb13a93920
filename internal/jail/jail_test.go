package jail

import "testing"

func TestCapMask(t *testing.T) {
	if got := CapMask(); got != 0 {
		t.Errorf("empty mask = %#x, want 0", got)
	}
	if got := CapMask(CapNetAdmin); got != 1<<CapNetAdmin {
		t.Errorf("CapMask(CapNetAdmin) = %#x", got)
	}
	want := uint64(1<<CapNetAdmin | 1<<CapNetRaw)
	if NetToolCaps != want {
		t.Errorf("NetToolCaps = %#x, want %#x", NetToolCaps, want)
	}
}

func TestRunEmptyArgv(t *testing.T) {
	r, err := NewRunner(Config{}, nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	if status := r.Run(nil, NetToolCaps); status != StatusLaunchFailed {
		t.Errorf("Run(nil) = %d, want %d", status, StatusLaunchFailed)
	}
}

func TestRunMissingBinary(t *testing.T) {
	r, err := NewRunner(Config{}, nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	status := r.Run([]string{"/nonexistent/portcullis-test-binary"}, 0)
	if status != StatusLaunchFailed {
		t.Errorf("Run(missing binary) = %d, want %d", status, StatusLaunchFailed)
	}
}
