package namespace

import (
	"golang.org/x/sys/unix"

	"github.com/cuemby/vortex/pkg/log"
	"github.com/cuemby/vortex/pkg/types"
)

// Manager holds a namespace Config and tracks whether it has already been
// applied to the current process.
type Manager struct {
	config  Config
	created bool

	// pidPending records that the caller asked for a PID namespace; the
	// flag is withheld from unshare(2) because it never takes effect for
	// the calling process, only the next process it forks.
	pidPending bool
}

// NewManager returns a Manager for config. Nothing happens until
// EnterNamespaces is called.
func NewManager(config Config) *Manager {
	return &Manager{config: config}
}

// Config returns the namespace configuration this manager was built with.
func (m *Manager) Config() Config {
	return m.config
}

// Created reports whether EnterNamespaces has already succeeded.
func (m *Manager) Created() bool {
	return m.created
}

// PIDPending reports whether a PID namespace was requested but deferred
// to the next fork, per the create-sequence contract.
func (m *Manager) PIDPending() bool {
	return m.pidPending
}

// CloneFlags computes the unshare(2)/clone(2) flag mask for config,
// omitting CLONE_NEWPID: new PID namespaces never take effect for the
// calling process, only for a process it subsequently forks.
func (c Config) CloneFlags() (flags uintptr, pidPending bool) {
	if c.Mount {
		flags |= unix.CLONE_NEWNS
	}
	if c.Network {
		flags |= unix.CLONE_NEWNET
	}
	if c.UTS {
		flags |= unix.CLONE_NEWUTS
	}
	if c.IPC {
		flags |= unix.CLONE_NEWIPC
	}
	if c.User {
		flags |= unix.CLONE_NEWUSER
	}
	if c.CGroup {
		flags |= unix.CLONE_NEWCGROUP
	}
	return flags, c.PID
}

// EnterNamespaces unshares the process into new namespaces per config and,
// if a UTS namespace was created, applies hostname/domainname. It is a
// no-op if namespaces were already entered.
func (m *Manager) EnterNamespaces() error {
	if m.created {
		return nil
	}

	logger := log.WithComponent("namespace")

	flags, pidPending := m.config.CloneFlags()
	m.pidPending = pidPending

	logger.Debug().
		Bool("mount", m.config.Mount).Bool("network", m.config.Network).
		Bool("uts", m.config.UTS).Bool("ipc", m.config.IPC).
		Bool("user", m.config.User).Bool("cgroup", m.config.CGroup).
		Bool("pid_pending", pidPending).
		Msg("entering namespaces")

	if flags != 0 {
		if err := unix.Unshare(int(flags)); err != nil {
			return types.NewNamespaceError("unshare failed", err)
		}
	}

	if m.config.UTS {
		if m.config.Hostname != nil {
			if err := m.setHostname(*m.config.Hostname); err != nil {
				return err
			}
		}
		if m.config.Domainname != nil {
			if err := m.setDomainname(*m.config.Domainname); err != nil {
				return err
			}
		}
	}

	m.created = true
	logger.Debug().Msg("namespaces entered")
	return nil
}

func (m *Manager) setHostname(hostname string) error {
	if err := unix.Sethostname([]byte(hostname)); err != nil {
		return types.NewNamespaceError("sethostname failed", err)
	}
	return nil
}

func (m *Manager) setDomainname(domainname string) error {
	if err := unix.Setdomainname([]byte(domainname)); err != nil {
		return types.NewNamespaceError("setdomainname failed", err)
	}
	return nil
}

// RemountProc detaches the existing /proc mount (failure tolerated) and
// mounts a fresh procfs reflecting the new PID namespace. It must be
// called after the mount namespace has been entered and before exec.
func RemountProc() error {
	logger := log.WithComponent("namespace")

	if err := unix.Unmount("/proc", unix.MNT_DETACH); err != nil {
		logger.Debug().Err(err).Msg("could not unmount /proc, continuing")
	}

	flags := uintptr(unix.MS_NOSUID | unix.MS_NODEV | unix.MS_NOEXEC)
	if err := unix.Mount("proc", "/proc", "proc", flags, ""); err != nil {
		logger.Warn().Err(err).Msg("failed to mount /proc")
		return nil
	}
	logger.Debug().Msg("/proc remounted")
	return nil
}
