// Package types holds the value types shared across vortex's runtime
// core: validated container and process identifiers, the memory/CPU
// value objects used to express resource limits, the resource stats
// snapshot, and the structured error taxonomy every other package
// returns.
package types
