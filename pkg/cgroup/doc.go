// Package cgroup manages Linux CGroup v2 control groups for vortex
// containers: directory hierarchy creation, controller enablement,
// resource limit writes, statistics parsing, and teardown. It also
// provides an in-memory ResourceBackend for tests that don't require a
// live cgroup v2 filesystem.
package cgroup
