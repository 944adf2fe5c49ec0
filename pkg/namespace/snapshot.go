package namespace

import (
	"fmt"
	"os"

	"github.com/cuemby/vortex/pkg/types"
)

// kinds are the /proc/<pid>/ns entries this runtime cares about.
var kinds = []string{"pid", "net", "mnt", "uts", "ipc", "user", "cgroup"}

// Snapshot holds the symlink targets of /proc/<pid>/ns/* for a process,
// keyed by namespace kind ("pid", "net", "mnt", "uts", "ipc", "user",
// "cgroup").
type Snapshot struct {
	PID     int32
	Targets map[string]string
}

// ReadSnapshot resolves the /proc/<pid>/ns/* symlinks for pid.
func ReadSnapshot(pid int32) (Snapshot, error) {
	snap := Snapshot{PID: pid, Targets: make(map[string]string, len(kinds))}
	for _, kind := range kinds {
		path := fmt.Sprintf("/proc/%d/ns/%s", pid, kind)
		target, err := os.Readlink(path)
		if err != nil {
			if os.IsNotExist(err) {
				// Kernel built without this namespace type; skip
				// silently. Other failures, such as missing permission
				// to inspect this pid, are returned as errors.
				continue
			}
			return Snapshot{}, types.NewNamespaceError(fmt.Sprintf("reading %s", path), err)
		}
		snap.Targets[kind] = target
	}
	return snap, nil
}

// IsolatedFrom reports whether snap's pid, net, or mnt namespace differs
// from other's, which callers use to check isolation against pid 1.
func (snap Snapshot) IsolatedFrom(other Snapshot) bool {
	for _, kind := range []string{"pid", "net", "mnt"} {
		a, aok := snap.Targets[kind]
		b, bok := other.Targets[kind]
		if aok && bok && a != b {
			return true
		}
	}
	return false
}
