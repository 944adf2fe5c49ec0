package namespace

import "testing"

func TestNewManager(t *testing.T) {
	config := Default()
	m := NewManager(config)

	if m.Created() {
		t.Error("Created() = true on a fresh manager, want false")
	}
	if !m.Config().PID || !m.Config().Mount {
		t.Errorf("Config() = %+v, want pid and mount set", m.Config())
	}
}

func TestManagerConfigBuilder(t *testing.T) {
	config := Minimal().WithHostname("test-container")
	m := NewManager(config)

	if m.Config().Hostname == nil || *m.Config().Hostname != "test-container" {
		t.Errorf("Hostname = %v, want test-container", m.Config().Hostname)
	}
}

// TestEnterNamespacesIdempotent exercises the real unshare(2) path, which
// needs CAP_SYS_ADMIN. It isolates the current process's namespaces, so
// it must be the only test in the binary that calls EnterNamespaces.
func TestEnterNamespacesIdempotent(t *testing.T) {
	requireRoot(t)

	m := NewManager(Minimal())

	if err := m.EnterNamespaces(); err != nil {
		t.Fatalf("EnterNamespaces: %v", err)
	}
	if !m.Created() {
		t.Error("Created() = false after a successful EnterNamespaces")
	}

	// A second call must be a no-op, not a second unshare attempt.
	if err := m.EnterNamespaces(); err != nil {
		t.Fatalf("second EnterNamespaces: %v", err)
	}
}
