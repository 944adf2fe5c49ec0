package monitor

import (
	"strings"
	"sync"
	"time"

	"github.com/cuemby/vortex/pkg/cgroup"
	"github.com/cuemby/vortex/pkg/events"
	"github.com/cuemby/vortex/pkg/log"
	"github.com/cuemby/vortex/pkg/metrics"
	"github.com/cuemby/vortex/pkg/types"
)

// throttleThreshold is the minimum growth in cumulative CPU throttling
// between two samples that is worth reporting.
const throttleThreshold = 100 * time.Millisecond

// memoryPressurePercent is the usage-to-limit ratio above which a
// MemoryPressure event is emitted.
const memoryPressurePercent = 80.0

// DefaultInterval is the sampling period used when a runner does not
// override it.
const DefaultInterval = 2 * time.Second

// Monitor periodically samples a cgroup.ResourceBackend and reports the
// result as events and Prometheus metrics. The zero value is not usable;
// construct with New.
type Monitor struct {
	backend     cgroup.ResourceBackend
	containerID string
	interval    time.Duration
	broker      *events.Broker
	memoryLimit *types.MemorySize

	mu      sync.Mutex
	running bool

	done chan struct{}
}

// New creates a monitor for backend, sampling every interval. Call
// WithEvents to receive lifecycle notifications; without it the monitor
// still samples and updates metrics, but emits nothing.
func New(backend cgroup.ResourceBackend, containerID string, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		backend:     backend,
		containerID: containerID,
		interval:    interval,
		done:        make(chan struct{}),
	}
}

// WithEvents attaches an events.Broker that receives Started,
// CpuThrottled, MemoryPressure, StatsUpdate, and Error notifications.
func (m *Monitor) WithEvents(broker *events.Broker) *Monitor {
	m.broker = broker
	return m
}

// WithMemoryLimit supplies a known memory ceiling for MemoryPressure
// percentage calculations. Without it, the monitor falls back to using
// the observed peak as a heuristic limit once peak exceeds current.
func (m *Monitor) WithMemoryLimit(limit types.MemorySize) *Monitor {
	m.memoryLimit = &limit
	return m
}

// Start begins sampling in a background goroutine and returns a channel
// that closes once the loop exits, equivalent to joining it.
func (m *Monitor) Start() <-chan struct{} {
	m.mu.Lock()
	m.running = true
	m.mu.Unlock()

	go m.run()
	return m.done
}

// Stop requests the sampling loop to exit. The loop notices at its next
// tick, matching the shared-boolean cancellation described for the
// monitor's stop signal; it does not interrupt a tick in progress.
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
}

func (m *Monitor) isRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) run() {
	defer close(m.done)

	logger := log.WithComponent("monitor").With().Str("container_id", m.containerID).Logger()
	logger.Info().Dur("interval", m.interval).Msg("resource monitoring started")

	m.publish(events.NewStarted(m.containerID))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	var last *types.ResourceStats

	for {
		<-ticker.C

		if !m.isRunning() {
			logger.Debug().Msg("monitor stopping")
			return
		}

		stats, err := m.backend.Stats()
		if err != nil {
			if containerGone(err) {
				logger.Info().Msg("container exited")
				return
			}
			logger.Error().Err(err).Msg("error reading stats")
			m.publish(events.NewError(m.containerID, err.Error()))
			continue
		}

		if last != nil {
			m.detectThrottling(*last, stats)
			m.detectMemoryPressure(stats)
		}

		m.publish(events.NewStatsUpdate(m.containerID, stats))
		m.recordMetrics(last, stats)

		statsCopy := stats
		last = &statsCopy
	}
}

func (m *Monitor) detectThrottling(prev, current types.ResourceStats) {
	delta := current.CPUThrottled - prev.CPUThrottled
	if delta > throttleThreshold {
		m.publish(events.NewCpuThrottled(m.containerID, delta))
	}
}

func (m *Monitor) detectMemoryPressure(current types.ResourceStats) {
	limit, ok := m.memoryLimitFor(current)
	if !ok {
		return
	}

	percentage := float64(current.MemoryCurrent.Bytes()) / float64(limit.Bytes()) * 100.0
	if percentage > memoryPressurePercent {
		m.publish(events.NewMemoryPressure(m.containerID, current.MemoryCurrent, limit, percentage))
	}
}

// memoryLimitFor returns the limit to use for a pressure calculation: the
// constructor-supplied ceiling when present, otherwise the observed peak
// when it exceeds current usage. Returns ok=false when neither is
// available, per the spec's "suppress the event" guidance.
func (m *Monitor) memoryLimitFor(current types.ResourceStats) (types.MemorySize, bool) {
	if m.memoryLimit != nil {
		return *m.memoryLimit, true
	}
	if current.MemoryPeak > current.MemoryCurrent {
		return current.MemoryPeak, true
	}
	return 0, false
}

func (m *Monitor) recordMetrics(prev *types.ResourceStats, current types.ResourceStats) {
	metrics.CPUUsageSeconds.WithLabelValues(m.containerID).Set(current.CPUUsage.Seconds())
	metrics.CPUThrottledSeconds.WithLabelValues(m.containerID).Set(current.CPUThrottled.Seconds())
	metrics.MemoryCurrentBytes.WithLabelValues(m.containerID).Set(float64(current.MemoryCurrent.Bytes()))
	metrics.MemoryPeakBytes.WithLabelValues(m.containerID).Set(float64(current.MemoryPeak.Bytes()))

	if prev == nil {
		return
	}
	if d := diffUint64(current.IOReadBytes, prev.IOReadBytes); d > 0 {
		metrics.IOReadBytesTotal.WithLabelValues(m.containerID).Add(float64(d))
	}
	if d := diffUint64(current.IOWriteBytes, prev.IOWriteBytes); d > 0 {
		metrics.IOWriteBytesTotal.WithLabelValues(m.containerID).Add(float64(d))
	}
}

func diffUint64(current, prev uint64) uint64 {
	if current <= prev {
		return 0
	}
	return current - prev
}

func (m *Monitor) publish(event events.ContainerEvent) {
	metrics.EventsTotal.WithLabelValues(string(event.Kind)).Inc()
	if m.broker == nil {
		return
	}
	m.broker.Publish(event)
}

// containerGone reports whether err indicates the cgroup directory was
// removed out from under the monitor, the expected shape of the race
// between a monitor's last tick and a runner's cleanup.
func containerGone(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "no such file")
}
