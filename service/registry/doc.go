// Package registry keeps the process-wide, append-only list of scheduling
// group keys together with a type registry mapping key labels to their
// value types. Key ids are dense and monotonically increasing so that
// per-shard slot arenas can index columns directly.
package registry
