package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Container lifecycle metrics
	ContainersRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vortex_containers_running",
			Help: "Number of containers currently under supervision",
		},
	)

	ContainersStartedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vortex_containers_started_total",
			Help: "Total number of containers started",
		},
	)

	ContainersExitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vortex_containers_exited_total",
			Help: "Total number of containers that exited, by exit reason",
		},
		[]string{"reason"},
	)

	// Resource usage gauges, sampled by the monitor on each tick
	CPUUsageSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vortex_cpu_usage_seconds",
			Help: "Cumulative CPU time consumed by a container",
		},
		[]string{"container_id"},
	)

	CPUThrottledSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vortex_cpu_throttled_seconds",
			Help: "Cumulative CPU time a container spent throttled",
		},
		[]string{"container_id"},
	)

	MemoryCurrentBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vortex_memory_current_bytes",
			Help: "Current memory usage of a container",
		},
		[]string{"container_id"},
	)

	MemoryPeakBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vortex_memory_peak_bytes",
			Help: "Peak memory usage observed for a container",
		},
		[]string{"container_id"},
	)

	IOReadBytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vortex_io_read_bytes_total",
			Help: "Total bytes read from block devices by a container",
		},
		[]string{"container_id"},
	)

	IOWriteBytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vortex_io_write_bytes_total",
			Help: "Total bytes written to block devices by a container",
		},
		[]string{"container_id"},
	)

	// Event bus metrics
	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vortex_events_total",
			Help: "Total number of lifecycle events published, by kind",
		},
		[]string{"kind"},
	)

	EventsDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vortex_events_dropped_total",
			Help: "Total number of events dropped because a subscriber buffer was full",
		},
		[]string{"kind"},
	)

	// Operation latency histograms
	ContainerCreateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vortex_container_create_duration_seconds",
			Help:    "Time to create the cgroup directory and controllers for a container",
			Buckets: prometheus.DefBuckets,
		},
	)

	ContainerRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vortex_container_run_duration_seconds",
			Help:    "Wall-clock time from run invocation to child exit",
			Buckets: prometheus.DefBuckets,
		},
	)

	ContainerCleanupDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vortex_container_cleanup_duration_seconds",
			Help:    "Time to tear down the cgroup directory after a container exits",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(ContainersRunning)
	prometheus.MustRegister(ContainersStartedTotal)
	prometheus.MustRegister(ContainersExitedTotal)
	prometheus.MustRegister(CPUUsageSeconds)
	prometheus.MustRegister(CPUThrottledSeconds)
	prometheus.MustRegister(MemoryCurrentBytes)
	prometheus.MustRegister(MemoryPeakBytes)
	prometheus.MustRegister(IOReadBytesTotal)
	prometheus.MustRegister(IOWriteBytesTotal)
	prometheus.MustRegister(EventsTotal)
	prometheus.MustRegister(EventsDroppedTotal)
	prometheus.MustRegister(ContainerCreateDuration)
	prometheus.MustRegister(ContainerRunDuration)
	prometheus.MustRegister(ContainerCleanupDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
