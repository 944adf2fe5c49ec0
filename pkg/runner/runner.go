package runner

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/vortex/pkg/cgroup"
	"github.com/cuemby/vortex/pkg/events"
	"github.com/cuemby/vortex/pkg/log"
	"github.com/cuemby/vortex/pkg/metrics"
	"github.com/cuemby/vortex/pkg/monitor"
	"github.com/cuemby/vortex/pkg/namespace"
	"github.com/cuemby/vortex/pkg/supervisor"
	"github.com/cuemby/vortex/pkg/types"
)

const (
	minCPUCores  = 0.0
	maxCPUCores  = 128.0
	maxMemoryMB  = 1_048_576 // 1 TB
)

// Options configures a single container run.
type Options struct {
	ContainerID string
	Command     []string

	// CPUCores <= 0 means no CPU limit is applied.
	CPUCores float64
	// MemoryMB == 0 means no memory limit is applied.
	MemoryMB uint64

	Namespaces namespace.Config
	Hostname   string

	Monitor         bool
	MonitorInterval time.Duration
	Events          *events.Broker
}

// Runner executes a single container run end to end.
type Runner struct {
	opts Options
}

// New returns a Runner for opts.
func New(opts Options) *Runner {
	return &Runner{opts: opts}
}

// Run executes the container and returns the command's result. Cleanup
// is attempted even when the command itself fails, and cleanup errors
// are logged but never shadow a valid exit code.
func (r *Runner) Run(ctx context.Context) (supervisor.Result, error) {
	if err := preflight(); err != nil {
		return supervisor.Result{}, err
	}

	containerID, err := types.NewContainerID(r.opts.ContainerID)
	if err != nil {
		return supervisor.Result{}, err
	}

	logger := log.WithComponent("runner").With().Str("container_id", containerID.String()).Logger()
	logger.Info().Msg("creating cgroup controller")

	createTimer := metrics.NewTimer()
	controller, err := cgroup.New(containerID)
	if err != nil {
		return supervisor.Result{}, err
	}
	createTimer.ObserveDuration(metrics.ContainerCreateDuration)

	if err := r.applyLimits(controller); err != nil {
		r.cleanup(controller)
		return supervisor.Result{}, err
	}

	if err := controller.AddProcess(types.CurrentProcessID()); err != nil {
		r.cleanup(controller)
		return supervisor.Result{}, err
	}

	logStats(logger, controller, "initial")

	nsConfig := r.opts.Namespaces
	if nsConfig.Hostname == nil {
		hostname := r.opts.Hostname
		if hostname == "" {
			hostname = containerID.String()
		}
		nsConfig = nsConfig.WithHostname(hostname)
	}

	var mon *monitor.Monitor
	var monitorDone <-chan struct{}
	if r.opts.Monitor {
		// A second handle over the same leaf: both handles write to the
		// same cgroup.procs/cpu.max/memory.max files, and Stats reads are
		// freely shareable while the runner retains exclusive ownership
		// of Cleanup.
		monBackend, err := cgroup.New(containerID)
		if err != nil {
			r.cleanup(controller)
			return supervisor.Result{}, err
		}
		interval := r.opts.MonitorInterval
		mon = monitor.New(monBackend, containerID.String(), interval).WithEvents(r.opts.Events)
		monitorDone = mon.Start()
	}

	metrics.ContainersStartedTotal.Inc()
	metrics.ContainersRunning.Inc()

	runTimer := metrics.NewTimer()
	sup := supervisor.New(supervisor.Config{
		ContainerID: containerID,
		Command:     r.opts.Command,
		Namespaces:  nsConfig,
	})
	result, runErr := sup.Run(ctx)
	runTimer.ObserveDuration(metrics.ContainerRunDuration)

	metrics.ContainersRunning.Dec()
	if runErr != nil {
		metrics.ContainersExitedTotal.WithLabelValues("error").Inc()
		r.publishExiting(containerID.String(), -1)
	} else {
		metrics.ContainersExitedTotal.WithLabelValues("exited").Inc()
		r.publishExiting(containerID.String(), result.ExitCode)
	}

	if mon != nil {
		mon.Stop()
		<-monitorDone
	}

	logStats(logger, controller, "final")

	r.cleanup(controller)

	if runErr != nil {
		return supervisor.Result{}, runErr
	}
	return result, nil
}

// publishExiting emits an Exiting event once the supervisor's command has
// returned, the one point in the run sequence where the final exit code
// is known. A nil Events broker (the common --monitor-less path) is a
// silent no-op.
func (r *Runner) publishExiting(containerID string, exitCode int) {
	if r.opts.Events == nil {
		return
	}
	metrics.EventsTotal.WithLabelValues(string(events.KindExiting)).Inc()
	r.opts.Events.Publish(events.NewExiting(containerID, exitCode))
}

func (r *Runner) applyLimits(controller *cgroup.Controller) error {
	if r.opts.CPUCores > 0 {
		if err := validateCPULimit(r.opts.CPUCores); err != nil {
			return err
		}
		if err := controller.SetCPULimit(types.CpuLimit{Cores: types.CpuCores(r.opts.CPUCores)}); err != nil {
			return err
		}
	}

	if r.opts.MemoryMB > 0 {
		if err := validateMemoryLimit(r.opts.MemoryMB); err != nil {
			return err
		}
		if err := controller.SetMemoryLimit(types.MemoryLimit{Limit: types.MemorySizeFromMB(r.opts.MemoryMB)}); err != nil {
			return err
		}
	}

	return nil
}

func (r *Runner) cleanup(controller *cgroup.Controller) {
	cleanupTimer := metrics.NewTimer()
	if err := controller.Cleanup(); err != nil {
		log.WithComponent("runner").Warn().Err(err).
			Str("container_id", controller.ContainerID().String()).
			Msg("cgroup cleanup failed")
	}
	cleanupTimer.ObserveDuration(metrics.ContainerCleanupDuration)
}

func preflight() error {
	if os.Geteuid() != 0 {
		return types.NewInvalidConfigError("must run as root")
	}
	if err := cgroup.RequireV2(); err != nil {
		return err
	}
	return nil
}

func validateCPULimit(cores float64) error {
	if cores <= minCPUCores {
		return types.NewInvalidConfigError("CPU limit must be positive")
	}
	if cores > maxCPUCores {
		return types.NewInvalidConfigError("CPU limit too high (max 128 cores)")
	}
	return nil
}

func validateMemoryLimit(mb uint64) error {
	if mb == 0 {
		return types.NewInvalidConfigError("memory limit must be positive")
	}
	if mb > maxMemoryMB {
		return types.NewInvalidConfigError("memory limit too high (max 1TB)")
	}
	return nil
}

func logStats(logger zerolog.Logger, controller *cgroup.Controller, label string) {
	stats, err := controller.Stats()
	if err != nil {
		logger.Warn().Err(err).Msg("could not read " + label + " statistics")
		return
	}
	logger.Info().
		Dur("cpu_usage", stats.CPUUsage).
		Dur("cpu_throttled", stats.CPUThrottled).
		Str("memory_current", stats.MemoryCurrent.String()).
		Str("memory_peak", stats.MemoryPeak.String()).
		Uint64("io_read_bytes", stats.IOReadBytes).
		Uint64("io_write_bytes", stats.IOWriteBytes).
		Msg(label + " statistics")
}
