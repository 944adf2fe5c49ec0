/*
Package monitor periodically samples a cgroup.ResourceBackend and turns
the deltas between samples into events.Broker notifications.

A Monitor emits Started once, then on every tick: StatsUpdate always,
CpuThrottled when throttling grew by more than 100ms since the last
sample, and MemoryPressure when current usage exceeds 80% of a known
limit. Limit discovery is deliberately loose — callers either supply a
fixed limit or let the monitor fall back to a peak-usage heuristic.

The monitor stops when Stop is called (the change takes effect on the
next tick) or when the backend's Stats call fails with an error that
looks like the cgroup directory disappeared, at which point it treats
the workload as exited and returns cleanly.
*/
package monitor
