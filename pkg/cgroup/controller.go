package cgroup

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cuemby/vortex/pkg/log"
	"github.com/cuemby/vortex/pkg/types"
)

// CgroupRoot is the v2 unified hierarchy mount point.
const CgroupRoot = "/sys/fs/cgroup"

// VortexNamespace is the subtree under CgroupRoot that holds every
// container's leaf cgroup.
const VortexNamespace = "vortex"

// KernelCleanupDelay is the pause given to the kernel to release the
// last reference to a cgroup's processes before rmdir is attempted.
const KernelCleanupDelay = 10 * time.Millisecond

var requiredControllers = []string{"cpu", "memory", "io"}

// Controller is the real ResourceBackend, backed by a leaf directory
// under /sys/fs/cgroup/vortex/<id>. Only the goroutine that calls New
// may call Cleanup; after Cleanup, every other operation returns a
// "not active" CGroup error.
type Controller struct {
	containerID types.ContainerID
	path        string
	active      bool
}

var _ ResourceBackend = (*Controller)(nil)

// New creates the vortex subtree (if absent), best-effort enables the
// required controllers at the root and vortex levels, then creates the
// leaf directory for containerID. Leaf creation is the only step whose
// failure is fatal.
func New(containerID types.ContainerID) (*Controller, error) {
	logger := log.WithComponent("cgroup")
	logger.Debug().Str("container_id", containerID.String()).Msg("creating cgroup controller")

	c := &Controller{
		containerID: containerID,
		path:        filepath.Join(CgroupRoot, VortexNamespace, containerID.String()),
	}

	if err := c.create(); err != nil {
		return nil, err
	}
	c.active = true

	logger.Info().Str("container_id", containerID.String()).Str("path", c.path).Msg("cgroup controller created")
	return c, nil
}

// ContainerID returns the controller's container id.
func (c *Controller) ContainerID() types.ContainerID { return c.containerID }

// Path returns the controller's leaf cgroup directory.
func (c *Controller) Path() string { return c.path }

// IsActive reports whether the controller is still active, i.e. Cleanup
// has not yet been called.
func (c *Controller) IsActive() bool { return c.active }

func (c *Controller) create() error {
	vortexRoot := filepath.Join(CgroupRoot, VortexNamespace)

	if _, err := os.Stat(vortexRoot); os.IsNotExist(err) {
		if err := os.MkdirAll(vortexRoot, 0o755); err != nil {
			return types.NewCGroupError("failed to create vortex directory: "+vortexRoot, err)
		}
		log.WithComponent("cgroup").Info().Str("path", vortexRoot).Msg("created vortex cgroup directory")
	}

	c.enableControllersAt(CgroupRoot)
	c.enableControllersAt(vortexRoot)

	if err := os.MkdirAll(c.path, 0o755); err != nil {
		return types.NewCGroupError("failed to create container directory: "+c.path, err)
	}
	log.WithComponent("cgroup").Debug().Str("path", c.path).Msg("cgroup directory created")
	return nil
}

// enableControllersAt attempts to enable cpu/memory/io at path. This is
// best-effort: another manager (systemd, a parent init) may already own
// the subtree, and every failure here is logged (at trace or debug) and
// ignored.
func (c *Controller) enableControllersAt(path string) {
	logger := log.WithComponent("cgroup")
	controlFile := filepath.Join(path, "cgroup.subtree_control")

	if _, err := os.Stat(controlFile); err != nil {
		logger.Trace().Str("path", path).Msg("subtree control file doesn't exist, skipping")
		return
	}

	available, err := os.ReadFile(filepath.Join(path, "cgroup.controllers"))
	if err != nil {
		logger.Trace().Str("path", path).Err(err).Msg("could not read available controllers")
		return
	}
	enabled, _ := os.ReadFile(controlFile)

	for _, controller := range requiredControllers {
		if !strings.Contains(string(available), controller) {
			continue
		}
		if strings.Contains(string(enabled), controller) {
			continue
		}
		if err := os.WriteFile(controlFile, []byte("+"+controller), 0o644); err != nil {
			logger.Debug().Str("path", path).Str("controller", controller).Err(err).
				Msg("could not enable controller (may be managed at higher level)")
			continue
		}
		logger.Debug().Str("path", path).Str("controller", controller).Msg("enabled controller")
	}
}

// errNotActive reports that a backend operation was called after Cleanup.
func errNotActive() error {
	return types.NewCGroupError("cgroup not active", nil)
}

// SetCPULimit writes "<quota> <period>" to cpu.max.
func (c *Controller) SetCPULimit(limit types.CpuLimit) error {
	if !c.active {
		return errNotActive()
	}
	quota, period := limit.Cores.ToQuota()
	content := strconv.FormatInt(quota, 10) + " " + strconv.FormatInt(period, 10)

	if err := os.WriteFile(filepath.Join(c.path, "cpu.max"), []byte(content), 0o644); err != nil {
		return types.NewCGroupError("failed to set CPU limit", err)
	}
	log.WithComponent("cgroup").Info().Str("container_id", c.containerID.String()).
		Float64("cores", float64(limit.Cores)).Int64("quota", quota).Int64("period", period).Msg("set CPU limit")
	return nil
}

// SetMemoryLimit writes memory.max, and memory.swap.max when swap is set.
func (c *Controller) SetMemoryLimit(limit types.MemoryLimit) error {
	if !c.active {
		return errNotActive()
	}
	logger := log.WithComponent("cgroup")

	limitBytes := strconv.FormatUint(limit.Limit.Bytes(), 10)
	if err := os.WriteFile(filepath.Join(c.path, "memory.max"), []byte(limitBytes), 0o644); err != nil {
		return types.NewCGroupError("failed to set memory limit", err)
	}

	if limit.Swap != nil {
		swapBytes := strconv.FormatUint(limit.Swap.Bytes(), 10)
		if err := os.WriteFile(filepath.Join(c.path, "memory.swap.max"), []byte(swapBytes), 0o644); err != nil {
			return types.NewCGroupError("failed to set swap limit", err)
		}
		logger.Info().Str("container_id", c.containerID.String()).
			Str("memory", limit.Limit.String()).Str("swap", limit.Swap.String()).Msg("set memory and swap limits")
		return nil
	}

	logger.Info().Str("container_id", c.containerID.String()).Str("memory", limit.Limit.String()).Msg("set memory limit")
	return nil
}

// AddProcess writes pid as a line to cgroup.procs.
func (c *Controller) AddProcess(pid types.ProcessID) error {
	if !c.active {
		return errNotActive()
	}
	if err := os.WriteFile(filepath.Join(c.path, "cgroup.procs"), []byte(pid.String()), 0o644); err != nil {
		return types.NewCGroupError("failed to add process "+pid.String(), err)
	}
	log.WithComponent("cgroup").Debug().Str("container_id", c.containerID.String()).Str("pid", pid.String()).
		Msg("added process to cgroup")
	return nil
}

// Stats assembles a ResourceStats snapshot from cpu.stat, memory.*, and
// io.stat. Individual reads are non-atomic; the result is best-effort.
func (c *Controller) Stats() (types.ResourceStats, error) {
	if !c.active {
		return types.ResourceStats{}, errNotActive()
	}
	usage, throttled, err := c.readCPUStats()
	if err != nil {
		return types.ResourceStats{}, err
	}
	current, peak, swapCurrent, swapPeak, err := c.readMemoryStats()
	if err != nil {
		return types.ResourceStats{}, err
	}
	readBytes, writeBytes := c.readIOStats()

	return types.ResourceStats{
		CPUUsage:      usage,
		CPUThrottled:  throttled,
		MemoryCurrent: current,
		MemoryPeak:    peak,
		SwapCurrent:   swapCurrent,
		SwapPeak:      swapPeak,
		IOReadBytes:   readBytes,
		IOWriteBytes:  writeBytes,
	}, nil
}

func (c *Controller) readCPUStats() (usage, throttled time.Duration, err error) {
	f, openErr := os.Open(filepath.Join(c.path, "cpu.stat"))
	if openErr != nil {
		return 0, 0, types.NewCGroupError("failed to read cpu.stat", openErr)
	}
	defer f.Close()

	var usageUsec, throttledUsec uint64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 2 {
			continue
		}
		switch fields[0] {
		case "usage_usec":
			usageUsec, _ = strconv.ParseUint(fields[1], 10, 64)
		case "throttled_usec":
			throttledUsec, _ = strconv.ParseUint(fields[1], 10, 64)
		}
	}
	return time.Duration(usageUsec) * time.Microsecond, time.Duration(throttledUsec) * time.Microsecond, nil
}

func (c *Controller) readMemoryStats() (current, peak, swapCurrent, swapPeak types.MemorySize, err error) {
	currentBytes, err := c.readSingleValue("memory.current")
	if err != nil {
		return 0, 0, 0, 0, err
	}
	peakBytes, err := c.readSingleValue("memory.peak")
	if err != nil {
		return 0, 0, 0, 0, err
	}
	swapCurrentBytes, _ := c.readSingleValue("memory.swap.current")
	swapPeakBytes, _ := c.readSingleValue("memory.swap.peak")

	return types.MemorySizeFromBytes(currentBytes), types.MemorySizeFromBytes(peakBytes),
		types.MemorySizeFromBytes(swapCurrentBytes), types.MemorySizeFromBytes(swapPeakBytes), nil
}

func (c *Controller) readSingleValue(filename string) (uint64, error) {
	content, err := os.ReadFile(filepath.Join(c.path, filename))
	if err != nil {
		return 0, types.NewCGroupError("failed to read "+filename, err)
	}
	value, err := strconv.ParseUint(strings.TrimSpace(string(content)), 10, 64)
	if err != nil {
		return 0, types.NewCGroupError("failed to parse "+filename+" value", err)
	}
	return value, nil
}

func (c *Controller) readIOStats() (readBytes, writeBytes uint64) {
	content, err := os.ReadFile(filepath.Join(c.path, "io.stat"))
	if err != nil {
		return 0, 0
	}

	sc := bufio.NewScanner(strings.NewReader(string(content)))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		for _, part := range fields[1:] {
			key, value, found := strings.Cut(part, "=")
			if !found {
				continue
			}
			switch key {
			case "rbytes":
				n, _ := strconv.ParseUint(value, 10, 64)
				readBytes += n
			case "wbytes":
				n, _ := strconv.ParseUint(value, 10, 64)
				writeBytes += n
			}
		}
	}
	return readBytes, writeBytes
}

// Cleanup reparents any remaining processes to the root cgroup, waits a
// short fixed interval for the kernel to release the last reference,
// then removes the leaf directory. ENOENT/EBUSY on rmdir are logged but
// not fatal; a second call to Cleanup is a no-op.
func (c *Controller) Cleanup() error {
	logger := log.WithComponent("cgroup")
	if !c.active {
		logger.Debug().Msg("cgroup already cleaned up")
		return nil
	}

	logger.Debug().Str("container_id", c.containerID.String()).Msg("cleaning up cgroup")
	c.moveProcessesToRoot()
	time.Sleep(KernelCleanupDelay)
	c.removeDirectory()

	c.active = false
	return nil
}

func (c *Controller) moveProcessesToRoot() {
	logger := log.WithComponent("cgroup")
	content, err := os.ReadFile(filepath.Join(c.path, "cgroup.procs"))
	if err != nil {
		logger.Debug().Err(err).Msg("could not read process list")
		return
	}

	rootProcs := filepath.Join(CgroupRoot, "cgroup.procs")
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, err := strconv.Atoi(line); err != nil {
			continue
		}
		if err := os.WriteFile(rootProcs, []byte(line), 0o644); err != nil {
			logger.Debug().Str("pid", line).Err(err).Msg("could not move process to root cgroup")
		}
	}
}

func (c *Controller) removeDirectory() {
	logger := log.WithComponent("cgroup")
	if err := os.Remove(c.path); err != nil {
		logger.Warn().Str("container_id", c.containerID.String()).Str("path", c.path).Err(err).
			Msg("failed to remove cgroup directory (may already be removed)")
		return
	}
	logger.Info().Str("container_id", c.containerID.String()).Str("path", c.path).Msg("cgroup removed")
}

// Close is a finalizer fallback for controllers that were never
// explicitly cleaned up. Implementations should call Cleanup directly;
// relying on Close indicates a bug in the caller.
func (c *Controller) Close() error {
	if !c.active {
		return nil
	}
	log.WithComponent("cgroup").Warn().Str("container_id", c.containerID.String()).
		Msg("cgroup not explicitly cleaned up, using finalizer fallback")
	return c.Cleanup()
}
