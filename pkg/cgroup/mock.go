package cgroup

import (
	"sync"

	"github.com/cuemby/vortex/pkg/log"
	"github.com/cuemby/vortex/pkg/types"
)

const mockMemoryCapMB = 500.0
const mockMemoryStepMB = 10.0

// MockBackend is an in-memory ResourceBackend for tests that don't need
// a live cgroup v2 filesystem. Stats() simulates realistic growth so
// tests can observe monotonic CPU/memory progression.
type MockBackend struct {
	mu         sync.Mutex
	cpuLimit   *types.CpuLimit
	memLimit   *types.MemoryLimit
	processes  []types.ProcessID
	stats      types.ResourceStats
	callCount  int
}

var _ ResourceBackend = (*MockBackend)(nil)

// NewMockBackend returns an empty MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// CallCount returns the number of backend operations invoked so far.
func (m *MockBackend) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// HasProcess reports whether pid has been added since the last Cleanup.
func (m *MockBackend) HasProcess(pid types.ProcessID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.processes {
		if p == pid {
			return true
		}
	}
	return false
}

// SetMockStats overrides the simulated stats snapshot directly.
func (m *MockBackend) SetMockStats(stats types.ResourceStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = stats
}

// CPULimit returns the last CPU limit set, if any.
func (m *MockBackend) CPULimit() *types.CpuLimit {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cpuLimit
}

// MemoryLimit returns the last memory limit set, if any.
func (m *MockBackend) MemoryLimit() *types.MemoryLimit {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.memLimit
}

func (m *MockBackend) SetCPULimit(limit types.CpuLimit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cpuLimit = &limit
	m.callCount++
	log.WithComponent("cgroup-mock").Debug().Float64("cores", float64(limit.Cores)).Msg("mock: set cpu limit")
	return nil
}

func (m *MockBackend) SetMemoryLimit(limit types.MemoryLimit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memLimit = &limit
	m.callCount++
	log.WithComponent("cgroup-mock").Debug().Float64("limit_mb", limit.Limit.MB()).Msg("mock: set memory limit")
	return nil
}

func (m *MockBackend) AddProcess(pid types.ProcessID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	for _, p := range m.processes {
		if p == pid {
			found = true
			break
		}
	}
	if !found {
		m.processes = append(m.processes, pid)
	}
	m.callCount++
	log.WithComponent("cgroup-mock").Debug().Str("pid", pid.String()).Int("total_processes", len(m.processes)).
		Msg("mock: added process")
	return nil
}

// Stats advances the simulated CPU usage by a fixed delta and grows
// memory toward a cap each call, so that tests can observe monotonic
// growth across successive calls. Peak tracks current.
func (m *MockBackend) Stats() (types.ResourceStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++

	m.stats.CPUUsage += 100_000_000 // 100ms in nanoseconds
	nextMB := m.stats.MemoryCurrent.MB() + mockMemoryStepMB
	if nextMB > mockMemoryCapMB {
		nextMB = mockMemoryCapMB
	}
	m.stats.MemoryCurrent = types.MemorySizeFromMB(uint64(nextMB))
	if m.stats.MemoryCurrent > m.stats.MemoryPeak {
		m.stats.MemoryPeak = m.stats.MemoryCurrent
	}

	return m.stats, nil
}

// Cleanup resets all state, as if the backend had never been used.
func (m *MockBackend) Cleanup() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := len(m.processes)
	m.cpuLimit = nil
	m.memLimit = nil
	m.processes = nil
	m.stats = types.ResourceStats{}
	m.callCount++
	log.WithComponent("cgroup-mock").Debug().Int("processes_removed", removed).Msg("mock: cleaned up")
	return nil
}
