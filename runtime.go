package schedgroup

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/viant/schedgroup/group"
	"github.com/viant/schedgroup/runtime/shard"
	"github.com/viant/schedgroup/service/event"
	"github.com/viant/schedgroup/service/lifecycle"
	"github.com/viant/schedgroup/service/registry"
)

// Runtime represents a running set of shards together with the lifecycle
// coordinator that keeps their group tables in agreement.
type Runtime struct {
	shards    []*shard.Shard
	lifecycle *lifecycle.Service
	registry  *registry.Service
	events    *event.Service
	loops     sync.WaitGroup
}

// Start launches one loop goroutine per shard. The supplied context bounds
// the lifetime of all shard loops.
func (r *Runtime) Start(ctx context.Context) error {
	if len(r.shards) == 0 {
		return fmt.Errorf("runtime has no shards")
	}
	for _, sh := range r.shards {
		r.loops.Add(1)
		go func(sh *shard.Shard) {
			defer r.loops.Done()
			if err := sh.Run(ctx); err != nil {
				logrus.WithError(err).WithField("shard", sh.Ordinal()).Error("shard loop exited")
			}
		}(sh)
	}
	return nil
}

// Shutdown stops the shard loops and waits for them to exit, then stops
// the event listener. Tasks still queued on a shard's mailbox fail with
// shard.ErrStopped, so no lifecycle caller is left waiting.
func (r *Runtime) Shutdown(ctx context.Context) error {
	for _, sh := range r.shards {
		sh.Shutdown()
	}
	r.loops.Wait()
	if r.events != nil {
		r.events.Shutdown()
	}
	return nil
}

// CreateGroup creates a scheduling group on every shard and resolves with
// its identity once all shards confirm. Fails with group.ErrExhausted when
// all ids are live.
func (r *Runtime) CreateGroup(ctx context.Context, name string, shares float64) (group.Group, error) {
	return r.lifecycle.CreateGroup(ctx, name, shares)
}

// DestroyGroup destroys a scheduling group on every shard. The group must
// not be in use and must not be used afterwards.
func (r *Runtime) DestroyGroup(ctx context.Context, g group.Group) error {
	return r.lifecycle.DestroyGroup(ctx, g)
}

// RenameGroup renames a scheduling group on every shard.
func (r *Runtime) RenameGroup(ctx context.Context, g group.Group, name string) error {
	return r.lifecycle.RenameGroup(ctx, g, name)
}

// CreateKey registers a per-group storage key and resolves with its id once
// every shard holds a constructed slot for every live group.
func (r *Runtime) CreateKey(ctx context.Context, config group.KeyConfig) (group.Key, error) {
	return r.lifecycle.CreateKey(ctx, config)
}

// ShardCount returns the number of shards.
func (r *Runtime) ShardCount() int {
	return len(r.shards)
}

// Shard returns the shard with the supplied ordinal.
func (r *Runtime) Shard(ordinal int) *shard.Shard {
	return r.shards[ordinal]
}

// RunAs executes fn on the supplied shard with the current-group cell set
// to g for the duration of fn.
func (r *Runtime) RunAs(ctx context.Context, ordinal int, g group.Group, fn func(ctx context.Context) error) error {
	return r.shards[ordinal].RunAs(ctx, g, fn)
}

// OnEvent installs handler as the lifecycle event listener.
func (r *Runtime) OnEvent(handler func(*event.Event)) {
	r.events.SetListener(handler)
}

// Registry exposes the key registry, e.g. for name-based type lookups.
func (r *Runtime) Registry() *registry.Service {
	return r.registry
}
