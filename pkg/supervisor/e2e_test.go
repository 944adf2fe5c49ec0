package supervisor

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/cuemby/vortex/pkg/namespace"
	"github.com/cuemby/vortex/pkg/types"
)

// TestMain intercepts the self-reexec path: Run() execs this very test
// binary as "<self> containerinit <command...>", so the test binary
// itself must answer to that contract the same way cmd/vortex does,
// mirroring the reexec.Register/reexec.Init pattern moby-moby uses to
// unit test fork/exec without a separate helper binary.
func TestMain(m *testing.M) {
	if len(os.Args) > 1 && os.Args[1] == ReexecCommand {
		os.Exit(RunContainerInit(os.Args[2:]))
	}
	os.Exit(m.Run())
}

// TestRunEchoInNamespacesExitsZero covers spec.md §8 scenario 1: a
// command run inside the default namespace set exits 0 and its stdout is
// captured.
func TestRunEchoInNamespacesExitsZero(t *testing.T) {
	requireRoot(t)

	id, err := types.NewContainerID("e2e-echo")
	if err != nil {
		t.Fatalf("NewContainerID: %v", err)
	}

	s := New(Config{
		ContainerID: id,
		Command:     []string{"/bin/echo", "hello-vortex"},
		Namespaces:  namespace.Default(),
	})

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", result.ExitCode)
	}
	if got := strings.TrimSpace(string(result.Stdout)); got != "hello-vortex" {
		t.Errorf("Stdout = %q, want %q", got, "hello-vortex")
	}
}

// TestRunSigkilledChildReportsOneThirtySeven covers spec.md §8 scenario
// 2: a child that kills itself with SIGKILL is reported as exit code
// 128+9=137, the standard shell convention for a signal death.
func TestRunSigkilledChildReportsOneThirtySeven(t *testing.T) {
	requireRoot(t)

	id, err := types.NewContainerID("e2e-sigkill")
	if err != nil {
		t.Fatalf("NewContainerID: %v", err)
	}

	// No PID namespace here: in one, the shell would be its init, and a
	// namespace init ignores a SIGKILL sent from inside the namespace.
	ns := namespace.Default()
	ns.PID = false

	s := New(Config{
		ContainerID: id,
		Command:     []string{"/bin/sh", "-c", "kill -9 $$"},
		Namespaces:  ns,
	})

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ExitCode != 137 {
		t.Errorf("ExitCode = %d, want 137", result.ExitCode)
	}
}

// TestRunMissingBinaryReportsOneTwentySeven covers spec.md §8 scenario
// 3: execing a path that does not exist surfaces exit code 127, the
// standard "command not found" convention.
func TestRunMissingBinaryReportsOneTwentySeven(t *testing.T) {
	requireRoot(t)

	id, err := types.NewContainerID("e2e-missing")
	if err != nil {
		t.Fatalf("NewContainerID: %v", err)
	}

	s := New(Config{
		ContainerID: id,
		Command:     []string{"/no/such/binary"},
		Namespaces:  namespace.Default(),
	})

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ExitCode != 127 {
		t.Errorf("ExitCode = %d, want 127", result.ExitCode)
	}
}
