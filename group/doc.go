// Package group defines the scheduling-group identity, the key handles used
// for per-group extensible storage, and the error taxonomy of the lifecycle
// operations. A Group is a small copyable value; all shard-local queries
// resolve against the State bound into the task context by the shard
// executor.
package group
