// Package namespace manages Linux namespace isolation for container
// workloads: the flag-based configuration, the unshare/sethostname
// lifecycle, and a /proc/<pid>/ns snapshot reader used to verify
// isolation after the fact.
package namespace
