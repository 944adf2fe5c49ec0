package supervisor

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/cuemby/vortex/pkg/namespace"
	"github.com/cuemby/vortex/pkg/types"
)

func TestRunRejectsEmptyCommand(t *testing.T) {
	id, err := types.NewContainerID("empty-cmd")
	if err != nil {
		t.Fatalf("NewContainerID: %v", err)
	}

	s := New(Config{ContainerID: id, Namespaces: namespace.Minimal()})
	if _, err := s.Run(context.Background()); err == nil {
		t.Fatal("Run with empty command should fail")
	} else if !types.IsInvalidConfig(err) {
		t.Errorf("expected InvalidConfig error, got %v", err)
	}
}

func TestExitCodeFromWaitErrorNil(t *testing.T) {
	code, err := exitCodeFromWaitError(nil)
	if err != nil || code != 0 {
		t.Errorf("exitCodeFromWaitError(nil) = (%d, %v), want (0, nil)", code, err)
	}
}

func TestExitCodeFromWaitErrorNonExitError(t *testing.T) {
	_, err := exitCodeFromWaitError(errors.New("boom"))
	if err == nil {
		t.Fatal("expected an error for a non-ExitError wait failure")
	}
	if !types.IsKind(err, types.KindSystem) {
		t.Errorf("expected a system error, got %v", err)
	}
}

// TestExitCodeFromWaitErrorRealExit runs a real subprocess through
// os/exec to exercise the *exec.ExitError branch with a genuine
// syscall.WaitStatus.
func TestExitCodeFromWaitErrorRealExit(t *testing.T) {
	cmd := exec.Command("/bin/sh", "-c", "exit 3")
	err := cmd.Run()
	if err == nil {
		t.Skip("shell did not report a non-zero exit, skipping")
	}

	code, convErr := exitCodeFromWaitError(err)
	if convErr != nil {
		t.Fatalf("exitCodeFromWaitError: %v", convErr)
	}
	if code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
}
