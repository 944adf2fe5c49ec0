// Package supervisor forks and execs a container's command inside the
// namespaces built by pkg/namespace, capturing stdout/stderr through
// pipes and translating wait status into an exit code.
//
// Forking is done by re-executing the running binary under a hidden
// "containerinit" subcommand with CLONE_NEWPID set on the new process,
// rather than a raw fork(2): this is the only way to fork safely from a
// Go process, since Go's runtime assumes many OS threads and does not
// support calling fork without an immediate exec in the child.
package supervisor
