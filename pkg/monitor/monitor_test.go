package monitor

import (
	"testing"
	"time"

	"github.com/cuemby/vortex/pkg/cgroup"
	"github.com/cuemby/vortex/pkg/events"
	"github.com/cuemby/vortex/pkg/types"
)

func TestMonitorLifecycle(t *testing.T) {
	backend := cgroup.NewMockBackend()
	m := New(backend, "test", 10*time.Millisecond)

	done := m.Start()
	time.Sleep(50 * time.Millisecond)
	m.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop in time")
	}
}

func TestMonitorStopBeforeStart(t *testing.T) {
	backend := cgroup.NewMockBackend()
	m := New(backend, "test", time.Second)

	// Must not panic.
	m.Stop()
}

func TestMonitorEmitsStartedFirst(t *testing.T) {
	backend := cgroup.NewMockBackend()
	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	m := New(backend, "test", 10*time.Millisecond).WithEvents(broker)
	done := m.Start()
	defer func() {
		m.Stop()
		<-done
	}()

	select {
	case event := <-sub:
		if event.Kind != events.KindStarted {
			t.Fatalf("first event kind = %s, want %s", event.Kind, events.KindStarted)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Started event")
	}
}

func TestMonitorEmitsStatsUpdateWithGrowingCPU(t *testing.T) {
	backend := cgroup.NewMockBackend()
	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	m := New(backend, "test", 10*time.Millisecond).WithEvents(broker)
	done := m.Start()
	defer func() {
		m.Stop()
		<-done
	}()

	// Started
	started := waitForEvent(t, sub, events.KindStarted)
	_ = started

	first := waitForEvent(t, sub, events.KindStatsUpdate)
	second := waitForEvent(t, sub, events.KindStatsUpdate)

	if second.Stats.CPUUsage <= first.Stats.CPUUsage {
		t.Fatalf("expected strictly growing CPU usage, got %v then %v", first.Stats.CPUUsage, second.Stats.CPUUsage)
	}
}

func TestMonitorMemoryPressureUsesExplicitLimit(t *testing.T) {
	backend := cgroup.NewMockBackend()
	backend.SetMockStats(types.ResourceStats{MemoryCurrent: types.MemorySizeFromMB(50)})

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()
	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	m := New(backend, "test", 10*time.Millisecond).
		WithEvents(broker).
		WithMemoryLimit(types.MemorySizeFromMB(60))
	done := m.Start()
	defer func() {
		m.Stop()
		<-done
	}()

	waitForEvent(t, sub, events.KindStarted)
	waitForEvent(t, sub, events.KindStatsUpdate) // first tick, no previous sample yet

	pressure := waitForEvent(t, sub, events.KindMemoryPressure)
	if pressure.Percentage <= 80.0 {
		t.Fatalf("expected percentage > 80, got %v", pressure.Percentage)
	}
}

func TestMonitorStopsOnContainerGone(t *testing.T) {
	backend := &goneBackend{}
	m := New(backend, "test", 10*time.Millisecond)

	done := m.Start()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not exit after container-gone error")
	}
}

// waitForEvent drains sub until it sees kind, failing the test on timeout
// or on an unexpected error event.
func waitForEvent(t *testing.T, sub events.Subscriber, kind events.Kind) events.ContainerEvent {
	t.Helper()
	for {
		select {
		case event := <-sub:
			if event.Kind == kind {
				return event
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event kind %s", kind)
		}
	}
}

// goneBackend simulates a cgroup directory removed out from under the
// monitor, the "no such file" exit path.
type goneBackend struct{}

func (g *goneBackend) SetCPULimit(types.CpuLimit) error    { return nil }
func (g *goneBackend) SetMemoryLimit(types.MemoryLimit) error { return nil }
func (g *goneBackend) AddProcess(types.ProcessID) error    { return nil }
func (g *goneBackend) Cleanup() error                      { return nil }
func (g *goneBackend) Stats() (types.ResourceStats, error) {
	return types.ResourceStats{}, errNoSuchFile{}
}

type errNoSuchFile struct{}

func (errNoSuchFile) Error() string { return "open /sys/fs/cgroup/vortex/x: no such file or directory" }
