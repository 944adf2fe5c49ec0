package types

import (
	"fmt"
	"os"
	"strconv"
)

const maxContainerIDLength = 64

// ContainerID is a validated container identifier. Its string form is
// guaranteed to be safe as a single filesystem path component, since it
// is used directly as a cgroup leaf directory name.
type ContainerID struct {
	id string
}

// NewContainerID validates id and wraps it. id must be 1-64 characters of
// alphanumerics, '-', or '_'.
func NewContainerID(id string) (ContainerID, error) {
	if len(id) == 0 {
		return ContainerID{}, NewInvalidConfigError("container id cannot be empty")
	}
	if len(id) > maxContainerIDLength {
		return ContainerID{}, NewInvalidConfigError(fmt.Sprintf("container id %q exceeds %d characters", id, maxContainerIDLength))
	}
	for _, r := range id {
		if !isIDChar(r) {
			return ContainerID{}, NewInvalidConfigError(fmt.Sprintf("invalid container id %q: must contain only alphanumeric, dash, or underscore", id))
		}
	}
	return ContainerID{id: id}, nil
}

func isIDChar(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r == '-' || r == '_':
		return true
	default:
		return false
	}
}

func (c ContainerID) String() string {
	return c.id
}

// ProcessID is a thin wrapper around a kernel PID. It carries no ownership
// of the underlying process; it is purely a name.
type ProcessID int32

// CurrentProcessID returns the calling process's PID.
func CurrentProcessID() ProcessID {
	return ProcessID(os.Getpid())
}

// ProcessIDFromRaw wraps a raw PID value.
func ProcessIDFromRaw(pid int32) ProcessID {
	return ProcessID(pid)
}

// AsRaw returns the wrapped PID as a raw int32.
func (p ProcessID) AsRaw() int32 {
	return int32(p)
}

func (p ProcessID) String() string {
	return strconv.Itoa(int(p))
}
