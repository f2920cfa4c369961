// Package shard implements one single-goroutine execution core of the
// runtime: a mailbox-driven task loop that exclusively owns its group
// descriptor table, slot arena and current-group cell. Lifecycle mutations
// arrive as mailbox tasks submitted by the coordinator; application tasks
// run through the RunAs bracket which maintains the current-group cell.
package shard
