// Package testutil holds shared test helpers.
package testutil

import (
	"os"
	"testing"
)

// RequirePrivileged skips the test unless the PORTCULLIS_PRIV_TEST
// environment variable is set. Tests that spawn real external tools or
// need CAP_NET_ADMIN only run in the privileged test environment.
func RequirePrivileged(t *testing.T) {
	t.Helper()
	if os.Getenv("PORTCULLIS_PRIV_TEST") == "" {
		t.Skip("Skipping test: requires PORTCULLIS_PRIV_TEST environment")
	}
}
