package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cuemby/vortex/pkg/cgroup"
	"github.com/cuemby/vortex/pkg/events"
	"github.com/cuemby/vortex/pkg/log"
	"github.com/cuemby/vortex/pkg/metrics"
	"github.com/cuemby/vortex/pkg/monitor"
	"github.com/cuemby/vortex/pkg/namespace"
	"github.com/cuemby/vortex/pkg/runner"
	"github.com/cuemby/vortex/pkg/supervisor"
	"github.com/cuemby/vortex/pkg/types"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vortex",
	Short: "Vortex - a minimal Linux container runtime",
	Long: `Vortex runs a single command in its own cgroup v2 control group
and Linux namespaces: no images, no orchestration, no daemon.`,
	Version: Version,
}

func init() {
	metrics.SetVersion(Version)

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"vortex version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(namespacesCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(containerInitCmd)

	runCmd.Flags().StringP("id", "i", "", "Container ID (required)")
	runCmd.Flags().Float64("cpu", 0, "CPU limit in cores (0 = unlimited)")
	runCmd.Flags().Uint64("memory", 0, "Memory limit in MB (0 = unlimited)")
	runCmd.Flags().Bool("monitor", false, "Enable resource monitoring")
	runCmd.Flags().Bool("no-namespaces", false, "Use minimal namespace isolation (pid and mount only)")
	runCmd.Flags().String("hostname", "", "Container hostname (default: container ID)")
	runCmd.Flags().String("config", "", "YAML file of run defaults (cpu/memory/monitor/no_namespaces/hostname); flags override it")
	_ = runCmd.MarkFlagRequired("id")

	statsCmd.Flags().StringP("id", "i", "", "Container ID (required)")
	_ = statsCmd.MarkFlagRequired("id")

	stopCmd.Flags().StringP("id", "i", "", "Container ID (required)")
	_ = stopCmd.MarkFlagRequired("id")

	namespacesCmd.Flags().Int32("pid", 0, "Process ID to inspect (default: current process)")
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
		Output:     os.Stdout,
	})
}

var runCmd = &cobra.Command{
	Use:   "run -- <command> [args...]",
	Short: "Run a command in a new container",
	Long: `Run creates a cgroup, applies resource limits, enters namespaces,
and execs the given command. Everything after "--" is the command.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		cpu, _ := cmd.Flags().GetFloat64("cpu")
		memory, _ := cmd.Flags().GetUint64("memory")
		withMonitor, _ := cmd.Flags().GetBool("monitor")
		noNamespaces, _ := cmd.Flags().GetBool("no-namespaces")
		hostname, _ := cmd.Flags().GetString("hostname")

		if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
			fileCfg, err := loadRunFileConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config file: %w", err)
			}
			if fileCfg.CPU != nil && !cmd.Flags().Changed("cpu") {
				cpu = *fileCfg.CPU
			}
			if fileCfg.MemoryMB != nil && !cmd.Flags().Changed("memory") {
				memory = *fileCfg.MemoryMB
			}
			if fileCfg.Monitor != nil && !cmd.Flags().Changed("monitor") {
				withMonitor = *fileCfg.Monitor
			}
			if fileCfg.NoNamespaces != nil && !cmd.Flags().Changed("no-namespaces") {
				noNamespaces = *fileCfg.NoNamespaces
			}
			if fileCfg.Hostname != nil && !cmd.Flags().Changed("hostname") {
				hostname = *fileCfg.Hostname
			}
		}

		nsConfig := namespace.Default()
		if noNamespaces {
			nsConfig = namespace.Minimal()
		}
		if hostname == "" {
			hostname = id
		}
		nsConfig = nsConfig.WithHostname(hostname)

		var broker *events.Broker
		if withMonitor {
			broker = events.NewBroker()
			broker.Start()
			defer broker.Stop()
			go printEvents(broker.Subscribe())
		}

		r := runner.New(runner.Options{
			ContainerID:     id,
			Command:         args,
			CPUCores:        cpu,
			MemoryMB:        memory,
			Namespaces:      nsConfig,
			Hostname:        hostname,
			Monitor:         withMonitor,
			MonitorInterval: monitor.DefaultInterval,
			Events:          broker,
		})

		result, err := r.Run(cmd.Context())
		if err != nil {
			return err
		}

		os.Stdout.Write(result.Stdout)
		os.Stderr.Write(result.Stderr)

		if result.ExitCode != 0 {
			os.Exit(result.ExitCode)
		}
		return nil
	},
}

func printEvents(sub events.Subscriber) {
	for event := range sub {
		fmt.Fprintf(os.Stderr, "[event] %s container=%s\n", event.Kind, event.ContainerID)
	}
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show resource usage for a running container",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")

		containerID, err := types.NewContainerID(id)
		if err != nil {
			return err
		}

		controller, err := cgroup.New(containerID)
		if err != nil {
			return fmt.Errorf("failed to access container (is it running?): %w", err)
		}

		stats, err := controller.Stats()
		if err != nil {
			return fmt.Errorf("failed to read stats: %w", err)
		}

		fmt.Printf("\nContainer Stats for %q\n", id)
		fmt.Println(strings.Repeat("-", 60))
		fmt.Printf("CPU Usage:       %.2fs\n", stats.CPUUsage.Seconds())
		fmt.Printf("CPU Throttled:   %.2fs\n", stats.CPUThrottled.Seconds())
		fmt.Printf("Memory Current:  %s\n", stats.MemoryCurrent)
		fmt.Printf("Memory Peak:     %s\n", stats.MemoryPeak)
		fmt.Printf("Swap Current:    %s\n", stats.SwapCurrent)
		fmt.Printf("Swap Peak:       %s\n", stats.SwapPeak)
		fmt.Printf("I/O Read:        %d bytes\n", stats.IOReadBytes)
		fmt.Printf("I/O Write:       %d bytes\n", stats.IOWriteBytes)
		fmt.Println(strings.Repeat("-", 60))

		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List containers with an active cgroup",
	RunE: func(cmd *cobra.Command, args []string) error {
		root := filepath.Join(cgroup.CgroupRoot, cgroup.VortexNamespace)

		fmt.Println("\nContainers")
		fmt.Println(strings.Repeat("-", 60))

		entries, err := os.ReadDir(root)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Println("No containers running")
				return nil
			}
			return fmt.Errorf("failed to read %s: %w", root, err)
		}

		count := 0
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			containerID, err := types.NewContainerID(entry.Name())
			if err != nil {
				continue
			}
			controller, err := cgroup.New(containerID)
			if err != nil {
				continue
			}
			stats, err := controller.Stats()
			if err != nil {
				continue
			}
			fmt.Printf("  %s - CPU: %.2fs, Memory: %s\n", containerID, stats.CPUUsage.Seconds(), stats.MemoryCurrent)
			count++
		}

		if count == 0 {
			fmt.Println("No containers running")
		} else {
			fmt.Println(strings.Repeat("-", 60))
			fmt.Printf("Total: %d container(s)\n", count)
		}
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Remove a container's cgroup",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")

		containerID, err := types.NewContainerID(id)
		if err != nil {
			return err
		}

		controller, err := cgroup.New(containerID)
		if err != nil {
			return fmt.Errorf("failed to access container (is it running?): %w", err)
		}

		if err := controller.Cleanup(); err != nil {
			return fmt.Errorf("failed to clean up container: %w", err)
		}

		fmt.Printf("Container %q stopped\n", id)
		return nil
	},
}

var namespacesCmd = &cobra.Command{
	Use:   "namespaces",
	Short: "Show namespace membership for a process",
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, _ := cmd.Flags().GetInt32("pid")
		if pid == 0 {
			pid = int32(os.Getpid())
		}

		snap, err := namespace.ReadSnapshot(pid)
		if err != nil {
			return fmt.Errorf("failed to read namespace info: %w", err)
		}

		fmt.Printf("\nNamespace Information for PID %d\n", pid)
		fmt.Println(strings.Repeat("-", 60))
		for _, kind := range []string{"pid", "net", "mnt", "uts", "ipc", "user", "cgroup"} {
			target, ok := snap.Targets[kind]
			if !ok {
				continue
			}
			fmt.Printf("%-6s %s\n", kind, target)
		}

		initSnap, err := namespace.ReadSnapshot(1)
		if err == nil && snap.IsolatedFrom(initSnap) {
			fmt.Println("\nProcess is in isolated namespaces")
		} else {
			fmt.Println("\nProcess shares namespaces with PID 1")
		}

		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check cgroup v2, cgroup filesystem access, and root privileges on this host",
	RunE: func(cmd *cobra.Command, args []string) error {
		serveAddr, _ := cmd.Flags().GetString("serve")

		fmt.Println("\nVortex Health Check")
		fmt.Println(strings.Repeat("-", 60))

		checkCgroupV2()
		checkFilesystem()
		checkRoot()

		health := metrics.GetHealth()
		for name, status := range health.Components {
			fmt.Printf("%-12s %s\n", name+":", status)
		}

		fmt.Println(strings.Repeat("-", 60))

		if serveAddr != "" {
			return serveHealth(serveAddr)
		}

		if health.Status != "healthy" {
			return fmt.Errorf("one or more health checks failed")
		}
		fmt.Println("\nAll systems operational")
		return nil
	},
}

func init() {
	healthCmd.Flags().String("serve", "", "Serve /metrics, /health, /ready, /live on this address and block (e.g. 127.0.0.1:9090)")
}

func serveHealth(addr string) error {
	http.Handle("/metrics", metrics.Handler())
	http.HandleFunc("/health", metrics.HealthHandler())
	http.HandleFunc("/ready", metrics.ReadyHandler())
	http.HandleFunc("/live", metrics.LivenessHandler())
	fmt.Printf("\nServing health and metrics endpoints on http://%s\n", addr)
	return http.ListenAndServe(addr, nil)
}

func checkCgroupV2() {
	fmt.Print("Checking CGroup v2... ")
	if err := cgroup.RequireV2(); err != nil {
		fmt.Println("FAIL")
		metrics.RegisterComponent("cgroup", false, err.Error())
		return
	}
	fmt.Println("OK")
	metrics.RegisterComponent("cgroup", true, "")
}

func checkFilesystem() {
	fmt.Print("Checking cgroup filesystem access... ")
	if err := os.MkdirAll(filepath.Join(cgroup.CgroupRoot, cgroup.VortexNamespace), 0o755); err != nil {
		fmt.Println("FAIL")
		metrics.RegisterComponent("filesystem", false, err.Error())
		return
	}
	fmt.Println("OK")
	metrics.RegisterComponent("filesystem", true, "")
}

func checkRoot() {
	fmt.Print("Checking root privileges... ")
	if os.Geteuid() != 0 {
		fmt.Println("NOT ROOT")
		metrics.RegisterComponent("root", false, "not running as root")
		return
	}
	fmt.Println("OK")
	metrics.RegisterComponent("root", true, "")
}

// containerInitCmd is the hidden re-exec target: the supervisor invokes
// the vortex binary as `vortex containerinit <command> [args...]`, never
// a human. Flag parsing is disabled so the wrapped command's own flags
// pass through untouched.
var containerInitCmd = &cobra.Command{
	Use:                supervisor.ReexecCommand,
	Hidden:             true,
	DisableFlagParsing: true,
	Args:               cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(supervisor.RunContainerInit(args))
	},
}
