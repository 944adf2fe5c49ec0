package cgroup

import "github.com/cuemby/vortex/pkg/types"

// ResourceBackend is the abstract set of operations a runner needs to
// enforce resource limits on a process group and read back its usage.
// Every method is idempotent and safe to call from multiple goroutines
// on a shared handle.
type ResourceBackend interface {
	// SetCPULimit sets the CPU share. Last write wins.
	SetCPULimit(limit types.CpuLimit) error
	// SetMemoryLimit sets the memory ceiling, and the swap ceiling when
	// one is present in limit.
	SetMemoryLimit(limit types.MemoryLimit) error
	// AddProcess associates pid with the backend's control group.
	AddProcess(pid types.ProcessID) error
	// Stats takes a best-effort, possibly non-atomic snapshot of current
	// resource usage.
	Stats() (types.ResourceStats, error)
	// Cleanup releases all kernel-visible state. On the real Controller,
	// every other operation fails with a "not active" error after a
	// successful Cleanup; MockBackend instead resets its state and keeps
	// accepting calls.
	Cleanup() error
}
