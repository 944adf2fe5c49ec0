package cgroup

import (
	"os"
	"testing"
)

// requireRoot skips t unless the test process is running as root, which
// every real-backend cgroup test needs in order to write under
// /sys/fs/cgroup.
func requireRoot(t *testing.T) {
	t.Helper()
	if os.Geteuid() != 0 {
		t.Skip("skipping test that requires root")
	}
}

// requireCgroupV2 skips t unless cgroup.controllers exists at CgroupRoot,
// i.e. the host has a v2 unified hierarchy mounted.
func requireCgroupV2(t *testing.T) {
	t.Helper()
	if _, err := os.Stat(CgroupRoot + "/cgroup.controllers"); err != nil {
		t.Skip("skipping test that requires cgroup v2")
	}
}
