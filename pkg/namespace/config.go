package namespace

import specs "github.com/opencontainers/runtime-spec/specs-go"

// Config describes which Linux namespaces to create for a container and
// the identity/filesystem state to apply once they exist.
type Config struct {
	PID     bool
	Mount   bool
	Network bool
	UTS     bool
	IPC     bool
	User    bool
	CGroup  bool

	Hostname   *string
	Domainname *string
	Rootfs     *string

	Mounts []specs.Mount
}

// Default returns the baseline isolation policy: pid, mount, uts and ipc
// namespaces, hostname set to "vortex-container". Network is left shared
// until a networking layer exists; user is left shared because UID/GID
// mapping tables are out of scope.
func Default() Config {
	hostname := "vortex-container"
	return Config{
		PID:      true,
		Mount:    true,
		UTS:      true,
		IPC:      true,
		Hostname: &hostname,
	}
}

// All enables every namespace except user, which requires UID/GID mapping
// tables this runtime does not manage.
func All() Config {
	c := Default()
	c.Network = true
	c.CGroup = true
	return c
}

// Minimal enables only pid and mount namespaces, with no hostname.
func Minimal() Config {
	return Config{
		PID:   true,
		Mount: true,
	}
}

// WithHostname sets the hostname applied after the UTS namespace is
// entered and returns c for chaining.
func (c Config) WithHostname(hostname string) Config {
	c.Hostname = &hostname
	return c
}

// WithDomainname sets the NIS domainname applied alongside the hostname.
func (c Config) WithDomainname(domainname string) Config {
	c.Domainname = &domainname
	return c
}

// WithRootfs records a rootfs path in the config. Neither the namespace
// manager nor the supervisor chroots or pivots into it.
func (c Config) WithRootfs(rootfs string) Config {
	c.Rootfs = &rootfs
	return c
}

// WithMounts appends mount entries to the config. They are carried with
// the config only: neither the namespace manager nor the supervisor
// performs them (the only mount made is the /proc remount).
func (c Config) WithMounts(mounts ...specs.Mount) Config {
	c.Mounts = append(append([]specs.Mount{}, c.Mounts...), mounts...)
	return c
}
