package cgroup

import (
	"bufio"
	"os"
	"strings"

	"github.com/cuemby/vortex/pkg/types"
)

// Version identifies which cgroup hierarchy (or combination) a host has
// mounted.
type Version int

const (
	Unsupported Version = iota // no cgroup mounts found
	V1                         // legacy multi-hierarchy cgroup v1 only
	V2                         // unified cgroup v2 only
	Hybrid                     // both v1 and v2 mounted
)

func (v Version) String() string {
	switch v {
	case V1:
		return "cgroup v1"
	case V2:
		return "cgroup v2"
	case Hybrid:
		return "cgroup hybrid"
	default:
		return "unsupported"
	}
}

// mountinfoPath is overridden in tests.
var mountinfoPath = "/proc/self/mountinfo"

// Detect parses /proc/self/mountinfo for cgroup and cgroup2 filesystem
// entries and reports which hierarchy this host actually has mounted,
// rather than inferring it from the bare existence of
// cgroup.controllers. A v1-only or hybrid mount is not something this
// runtime can drive: it requires the unified v2 hierarchy throughout.
func Detect() (Version, string, error) {
	f, err := os.Open(mountinfoPath)
	if err != nil {
		return Unsupported, "", types.NewSystemError("failed to open "+mountinfoPath, err)
	}
	defer f.Close()

	var hasV1, hasV2 bool
	var v1Points, v2Points []string

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		const sep = " - "
		i := strings.LastIndex(line, sep)
		if i < 0 {
			continue
		}
		tail := strings.Fields(line[i+len(sep):])
		if len(tail) < 1 {
			continue
		}
		fstype := tail[0]

		pre := strings.Fields(line[:i])
		if len(pre) < 5 {
			continue
		}
		mountPoint := pre[4]

		switch fstype {
		case "cgroup2":
			hasV2 = true
			v2Points = append(v2Points, mountPoint)
		case "cgroup":
			hasV1 = true
			v1Points = append(v1Points, mountPoint)
		}
	}
	if err := sc.Err(); err != nil {
		return Unsupported, "", types.NewSystemError("failed to scan "+mountinfoPath, err)
	}

	switch {
	case hasV1 && hasV2:
		return Hybrid, "cgroup2 on " + strings.Join(v2Points, ",") + "; cgroup v1 on " + strings.Join(v1Points, ","), nil
	case hasV2:
		return V2, "cgroup2 on " + strings.Join(v2Points, ","), nil
	case hasV1:
		return V1, "cgroup v1 on " + strings.Join(v1Points, ","), nil
	default:
		return Unsupported, "no cgroup mounts found", nil
	}
}

// RequireV2 returns an actionable error unless the host has a pure
// unified cgroup v2 hierarchy mounted; v1-only and hybrid hosts get a
// message naming the actual mount layout instead of a generic
// "not found".
func RequireV2() error {
	version, detail, err := Detect()
	if err != nil {
		return err
	}
	if version != V2 {
		return types.NewCGroupError("host does not have a unified cgroup v2 hierarchy ("+version.String()+": "+detail+")", nil)
	}
	return nil
}
