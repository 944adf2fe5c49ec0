package cgroup

import (
	"os"
	"strings"
	"testing"

	"github.com/cuemby/vortex/pkg/types"
)

// TestControllerLimitRoundTrip exercises E2E scenario 1 from the
// testable-properties scenarios: setting CPU=1.5 cores and memory=512MB
// must produce exact literal file contents.
func TestControllerLimitRoundTrip(t *testing.T) {
	requireRoot(t)
	requireCgroupV2(t)

	id, err := types.NewContainerID("e2e-1")
	if err != nil {
		t.Fatalf("NewContainerID: %v", err)
	}

	c, err := New(id)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Cleanup()

	if err := c.SetCPULimit(types.CpuLimit{Cores: 1.5}); err != nil {
		t.Fatalf("SetCPULimit: %v", err)
	}
	if err := c.SetMemoryLimit(types.MemoryLimit{Limit: types.MemorySizeFromMB(512)}); err != nil {
		t.Fatalf("SetMemoryLimit: %v", err)
	}

	cpuMax, err := os.ReadFile(c.Path() + "/cpu.max")
	if err != nil {
		t.Fatalf("reading cpu.max: %v", err)
	}
	if got := strings.TrimSpace(string(cpuMax)); got != "150000 100000" {
		t.Errorf("cpu.max = %q, want %q", got, "150000 100000")
	}

	memMax, err := os.ReadFile(c.Path() + "/memory.max")
	if err != nil {
		t.Fatalf("reading memory.max: %v", err)
	}
	if got := strings.TrimSpace(string(memMax)); got != "536870912" {
		t.Errorf("memory.max = %q, want %q", got, "536870912")
	}
}

func TestControllerCleanupIdempotent(t *testing.T) {
	requireRoot(t)
	requireCgroupV2(t)

	id, err := types.NewContainerID("e2e-cleanup")
	if err != nil {
		t.Fatalf("NewContainerID: %v", err)
	}

	c, err := New(id)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := c.Cleanup(); err != nil {
		t.Fatalf("first Cleanup: %v", err)
	}
	if err := c.Cleanup(); err != nil {
		t.Fatalf("second Cleanup should be a no-op, got error: %v", err)
	}
	if c.IsActive() {
		t.Error("controller should be inactive after cleanup")
	}
}

func TestControllerOperationsFailAfterCleanup(t *testing.T) {
	requireRoot(t)
	requireCgroupV2(t)

	id, err := types.NewContainerID("e2e-postcleanup")
	if err != nil {
		t.Fatalf("NewContainerID: %v", err)
	}

	c, err := New(id)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	if err := c.SetCPULimit(types.CpuLimit{Cores: 1}); !types.IsCGroup(err) {
		t.Errorf("SetCPULimit after cleanup = %v, want a cgroup 'not active' error", err)
	}
	if err := c.SetMemoryLimit(types.MemoryLimit{Limit: types.MemorySizeFromMB(512)}); !types.IsCGroup(err) {
		t.Errorf("SetMemoryLimit after cleanup = %v, want a cgroup 'not active' error", err)
	}
	if err := c.AddProcess(types.CurrentProcessID()); !types.IsCGroup(err) {
		t.Errorf("AddProcess after cleanup = %v, want a cgroup 'not active' error", err)
	}
	if _, err := c.Stats(); !types.IsCGroup(err) {
		t.Errorf("Stats after cleanup = %v, want a cgroup 'not active' error", err)
	}
}
