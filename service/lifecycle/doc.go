// Package lifecycle owns group and key lifecycle coordination and is the
// only writer of the per-shard group tables' structure. Operations are
// linearised process-wide and applied with a broadcast-and-join: a mutation
// task goes to every shard's mailbox, the caller suspends until every shard
// acknowledges, and partial failures are compensated with undo tasks before
// the error surfaces.
package lifecycle
