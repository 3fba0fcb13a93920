package jail

import (
	"testing"

	"grimm.is/portcullis/internal/testutil"
)

// Exercises the real runner against actual binaries. Only runs in the
// privileged test environment.
func TestRunRealBinaries(t *testing.T) {
	testutil.RequirePrivileged(t)

	r, err := NewRunner(Config{User: "nobody"}, nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	if status := r.Run([]string{"/bin/true"}, 0); status != 0 {
		t.Errorf("Run(/bin/true) = %d, want 0", status)
	}
	if status := r.Run([]string{"/bin/false"}, 0); status == 0 {
		t.Errorf("Run(/bin/false) = 0, want nonzero")
	}
}
