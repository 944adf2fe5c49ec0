package namespace

import (
	"os"
	"testing"
)

func TestReadSnapshotSelf(t *testing.T) {
	snap, err := ReadSnapshot(int32(os.Getpid()))
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if snap.PID != int32(os.Getpid()) {
		t.Errorf("PID = %d, want %d", snap.PID, os.Getpid())
	}
	if len(snap.Targets) == 0 {
		t.Error("Targets is empty, want at least one resolved namespace symlink")
	}
}

func TestSnapshotIsolatedFromSelf(t *testing.T) {
	snap, err := ReadSnapshot(int32(os.Getpid()))
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if snap.IsolatedFrom(snap) {
		t.Error("a snapshot should never be isolated from itself")
	}
}
