package cgroup

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMountinfo(t *testing.T, contents string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "mountinfo")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	old := mountinfoPath
	mountinfoPath = path
	t.Cleanup(func() { mountinfoPath = old })
}

const mountinfoV2Only = `25 30 0:22 / /sys/fs/cgroup rw,nosuid,nodev,noexec,relatime shared:4 - cgroup2 cgroup2 rw,nsdelegate,memory_recursiveprot
`

const mountinfoV1Only = `26 30 0:23 / /sys/fs/cgroup/cpu,cpuacct rw,nosuid,nodev,noexec,relatime shared:5 - cgroup cgroup rw,cpu,cpuacct
27 30 0:24 / /sys/fs/cgroup/memory rw,nosuid,nodev,noexec,relatime shared:6 - cgroup cgroup rw,memory
`

const mountinfoHybrid = `25 30 0:22 / /sys/fs/cgroup/unified rw,nosuid,nodev,noexec,relatime shared:4 - cgroup2 cgroup2 rw,nsdelegate
26 30 0:23 / /sys/fs/cgroup/cpu,cpuacct rw,nosuid,nodev,noexec,relatime shared:5 - cgroup cgroup rw,cpu,cpuacct
`

func TestDetectV2Only(t *testing.T) {
	writeMountinfo(t, mountinfoV2Only)

	version, detail, err := Detect()
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if version != V2 {
		t.Errorf("version = %v, want V2", version)
	}
	if detail == "" {
		t.Error("expected non-empty detail")
	}
	if err := RequireV2(); err != nil {
		t.Errorf("RequireV2() = %v, want nil", err)
	}
}

func TestDetectV1Only(t *testing.T) {
	writeMountinfo(t, mountinfoV1Only)

	version, _, err := Detect()
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if version != V1 {
		t.Errorf("version = %v, want V1", version)
	}
	if err := RequireV2(); err == nil {
		t.Error("RequireV2() should fail on a v1-only host")
	}
}

func TestDetectHybrid(t *testing.T) {
	writeMountinfo(t, mountinfoHybrid)

	version, _, err := Detect()
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if version != Hybrid {
		t.Errorf("version = %v, want Hybrid", version)
	}
	if err := RequireV2(); err == nil {
		t.Error("RequireV2() should fail on a hybrid host")
	}
}

func TestDetectUnsupported(t *testing.T) {
	writeMountinfo(t, "25 30 0:22 / / rw - ext4 /dev/sda1 rw\n")

	version, _, err := Detect()
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if version != Unsupported {
		t.Errorf("version = %v, want Unsupported", version)
	}
}
