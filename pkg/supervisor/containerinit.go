package supervisor

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"github.com/cuemby/vortex/pkg/log"
	"github.com/cuemby/vortex/pkg/namespace"
)

// RunContainerInit is the entry point for the hidden ReexecCommand
// subcommand. It reads the namespace config left by the parent in
// envNamespaceConfig, enters namespaces, remounts /proc, resets the
// working directory and environment, then execs command. It never
// returns on success; on failure it returns the process exit code the
// caller should use with os.Exit.
func RunContainerInit(command []string) int {
	logger := log.WithComponent("containerinit")

	var nsConfig namespace.Config
	if raw := os.Getenv(envNamespaceConfig); raw != "" {
		if err := json.Unmarshal([]byte(raw), &nsConfig); err != nil {
			fmt.Fprintf(os.Stderr, "vortex: invalid namespace config: %v\n", err)
			return 126
		}
	}

	manager := namespace.NewManager(nsConfig)
	if err := manager.EnterNamespaces(); err != nil {
		fmt.Fprintf(os.Stderr, "vortex: failed to enter namespaces: %v\n", err)
		return 126
	}

	if nsConfig.Mount {
		if err := namespace.RemountProc(); err != nil {
			logger.Warn().Err(err).Msg("failed to remount /proc, continuing")
		}
	}

	if err := os.Chdir("/"); err != nil {
		fmt.Fprintf(os.Stderr, "vortex: failed to change directory: %v\n", err)
		return 126
	}
	os.Setenv("HOME", "/root")
	os.Setenv("PWD", "/")
	os.Setenv("OLDPWD", "/")

	program, args := buildCommand(command)
	logger.Debug().Str("program", program).Strs("args", args).Msg("executing")

	path := program
	if !filepath.IsAbs(path) {
		if resolved, err := exec.LookPath(program); err == nil {
			path = resolved
		}
	}

	argv := append([]string{program}, args...)
	if err := syscall.Exec(path, argv, os.Environ()); err != nil {
		fmt.Fprintf(os.Stderr, "vortex: failed to execute %s: %v\n", program, err)
		return 127
	}

	// syscall.Exec only returns on failure.
	return 127
}

// buildCommand splits command into a program and its arguments. If
// command is empty, it defaults to an interactive shell. If the program
// is /bin/bash or /bin/sh with no arguments, -i is appended to request
// an interactive shell.
func buildCommand(command []string) (string, []string) {
	if len(command) == 0 {
		return "/bin/sh", []string{"-i"}
	}

	program := command[0]
	args := append([]string{}, command[1:]...)
	if (program == "/bin/bash" || program == "/bin/sh") && len(args) == 0 {
		args = append(args, "-i")
	}
	return program, args
}
