/*
Package metrics exposes Prometheus metrics and HTTP health endpoints for
a running vortex container.

# Metrics

Container lifecycle:
  - vortex_containers_running
  - vortex_containers_started_total
  - vortex_containers_exited_total{reason}

Resource usage, updated by the monitor on each sampling tick:
  - vortex_cpu_usage_seconds{container_id}
  - vortex_cpu_throttled_seconds{container_id}
  - vortex_memory_current_bytes{container_id}
  - vortex_memory_peak_bytes{container_id}
  - vortex_io_read_bytes_total{container_id}
  - vortex_io_write_bytes_total{container_id}

Event bus:
  - vortex_events_total{kind}
  - vortex_events_dropped_total{kind}

Operation latency:
  - vortex_container_create_duration_seconds
  - vortex_container_run_duration_seconds
  - vortex_container_cleanup_duration_seconds

# Usage

	http.Handle("/metrics", metrics.Handler())
	http.HandleFunc("/health", metrics.HealthHandler())
	http.HandleFunc("/ready", metrics.ReadyHandler())
	http.HandleFunc("/live", metrics.LivenessHandler())

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.ContainerRunDuration)

# Health and readiness

RegisterComponent/UpdateComponent record whether a named subsystem
(e.g. "cgroup", "filesystem") is healthy. GetReadiness treats the
absence of a registration as not-ready, so a component must register
itself before /ready reports success.
*/
package metrics
