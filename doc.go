// Package schedgroup provides the scheduling-group substrate of a
// thread-per-core cooperative task runtime: a small reusable namespace of
// group identities replicated across single-goroutine shards, asynchronous
// lifecycle operations coordinated with broadcast-and-join, and typed
// per-group per-shard storage attached through registered keys.
//
// Applications create groups and keys through the Runtime and read or
// mutate slot contents synchronously from tasks running on a shard; the
// fair-share dispatch algorithm itself is out of scope and only consumes
// the per-shard shares and liveness this package maintains.
package schedgroup
