package namespace

import (
	"os"
	"testing"
)

// requireRoot skips t unless the test process can unshare namespaces,
// which needs CAP_SYS_ADMIN (root in the initial user namespace).
func requireRoot(t *testing.T) {
	t.Helper()
	if os.Geteuid() != 0 {
		t.Skip("skipping test that requires root")
	}
}
