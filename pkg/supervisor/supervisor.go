package supervisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/cuemby/vortex/pkg/log"
	"github.com/cuemby/vortex/pkg/types"
)

// Supervisor forks the container's init process and waits for it to
// exit, forwarding SIGINT as SIGTERM to the child.
type Supervisor struct {
	config Config
}

// New returns a Supervisor for config.
func New(config Config) *Supervisor {
	return &Supervisor{config: config}
}

// Run starts the container's command and blocks until it exits, a
// SIGINT is received and forwarded, or ctx is cancelled. It never
// abandons the child: every exit path waits for the process to actually
// terminate before returning.
func (s *Supervisor) Run(ctx context.Context) (Result, error) {
	if len(s.config.Command) == 0 {
		return Result{}, types.NewInvalidConfigError("command cannot be empty")
	}

	logger := log.WithComponent("supervisor").With().
		Str("container_id", s.config.ContainerID.String()).Logger()

	nsPayload, err := json.Marshal(s.config.Namespaces)
	if err != nil {
		return Result{}, types.NewSystemError("failed to encode namespace config", err)
	}

	self, err := os.Executable()
	if err != nil {
		self = os.Args[0]
	}

	args := append([]string{ReexecCommand}, s.config.Command...)
	cmd := exec.Command(self, args...)
	cmd.Env = append(os.Environ(), envNamespaceConfig+"="+string(nsPayload))
	cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: syscall.SIGKILL}

	// CLONE_NEWPID must be set at clone time: unshare(2) never moves the
	// calling process into the new namespace, only processes it forks
	// afterward. Every other namespace is entered in-process by the
	// child via namespace.Manager.EnterNamespaces.
	if s.config.Namespaces.PID {
		cmd.SysProcAttr.Cloneflags = syscall.CLONE_NEWPID
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug().Strs("command", s.config.Command).Msg("starting container init")
	if err := cmd.Start(); err != nil {
		return Result{}, types.NewSystemError("failed to start container init", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error
	select {
	case waitErr = <-done:
	case <-sigCh:
		logger.Warn().Msg("received interrupt, forwarding SIGTERM to child")
		_ = cmd.Process.Signal(syscall.SIGTERM)
		waitErr = <-done
	case <-ctx.Done():
		logger.Warn().Msg("context cancelled, forwarding SIGTERM to child")
		_ = cmd.Process.Signal(syscall.SIGTERM)
		waitErr = <-done
	}

	exitCode, err := exitCodeFromWaitError(waitErr)
	if err != nil {
		return Result{}, err
	}

	logger.Info().Int("exit_code", exitCode).Msg("container init exited")
	return Result{ExitCode: exitCode, Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
}

// exitCodeFromWaitError translates an os/exec wait error into the exit
// code convention used throughout vortex: the raw exit code on normal
// exit, or 128+signal when the child was terminated by a signal.
func exitCodeFromWaitError(err error) (int, error) {
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return -1, types.NewSystemError("wait failed", err)
	}

	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok {
		if ws.Signaled() {
			return 128 + int(ws.Signal()), nil
		}
		return ws.ExitStatus(), nil
	}
	return exitErr.ExitCode(), nil
}
