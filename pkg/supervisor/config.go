package supervisor

import (
	"github.com/cuemby/vortex/pkg/namespace"
	"github.com/cuemby/vortex/pkg/types"
)

// ReexecCommand is the hidden CLI subcommand name the parent invokes on
// itself to become the container's init process.
const ReexecCommand = "containerinit"

// envNamespaceConfig carries the JSON-encoded namespace.Config from the
// parent to the re-exec'd child, which cannot receive it any other way
// since the child replaces its own argv/env at clone time.
const envNamespaceConfig = "VORTEX_NAMESPACE_CONFIG"

// Config describes a single command execution inside a container.
type Config struct {
	ContainerID types.ContainerID
	Command     []string
	Namespaces  namespace.Config
}

// Result is the outcome of running a container's command to completion.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}
