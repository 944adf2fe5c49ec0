/*
Package runner is the composition root that wires the cgroup controller,
namespace configuration, execution supervisor, and resource monitor into
a single container run.

Run follows a fixed sequence: preflight checks, cgroup creation and
limit application, current-process cgroup attachment, namespace config
construction, an optional monitor over a second backend handle sharing
the same cgroup leaf, supervisor invocation, monitor teardown, and
cgroup cleanup. The command's exit code is always surfaced to the
caller, even when later cleanup steps fail.
*/
package runner
