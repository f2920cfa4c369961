package lifecycle

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/schedgroup/group"
	"github.com/viant/schedgroup/runtime/shard"
	"github.com/viant/schedgroup/service/event"
	"github.com/viant/schedgroup/service/mailbox/memory"
	"github.com/viant/schedgroup/service/registry"
)

func startShards(t *testing.T, count int) []*shard.Shard {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	shards := make([]*shard.Shard, count)
	for i := range shards {
		shards[i] = shard.New(i, shard.DefaultConfig())
		sh := shards[i]
		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = sh.Run(ctx)
		}()
		t.Cleanup(func() {
			<-done
		})
	}
	t.Cleanup(cancel)
	return shards
}

func newCoordinator(t *testing.T, shardCount int) (*Service, []*shard.Shard, *registry.Service) {
	t.Helper()
	shards := startShards(t, shardCount)
	aRegistry := registry.New()
	return New(shards, aRegistry), shards, aRegistry
}

// nameOn reads a group's descriptor name on the supplied shard's own loop.
func nameOn(t *testing.T, sh *shard.Shard, g group.Group) string {
	t.Helper()
	var name string
	require.NoError(t, sh.Submit(context.Background(), func(taskCtx context.Context) error {
		name = g.Name(taskCtx)
		return nil
	}))
	return name
}

func liveOn(t *testing.T, sh *shard.Shard, g group.Group) bool {
	t.Helper()
	var live bool
	require.NoError(t, sh.Submit(context.Background(), func(context.Context) error {
		live = sh.Live(g)
		return nil
	}))
	return live
}

func TestCreateGroup(t *testing.T) {
	service, shards, _ := newCoordinator(t, 4)
	ctx := context.Background()

	g, err := service.CreateGroup(ctx, "batch", 200)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Index())

	for _, sh := range shards {
		assert.True(t, liveOn(t, sh, g))
		assert.Equal(t, "batch", nameOn(t, sh, g))
	}
}

func TestCreateGroupExhausted(t *testing.T) {
	service, _, _ := newCoordinator(t, 2)
	ctx := context.Background()

	seen := map[int]bool{}
	for i := 1; i < group.Max; i++ {
		g, err := service.CreateGroup(ctx, fmt.Sprintf("g%d", i), 100)
		require.NoError(t, err)
		assert.False(t, seen[g.Index()])
		seen[g.Index()] = true
	}
	assert.Len(t, seen, group.Max-1)

	_, err := service.CreateGroup(ctx, "overflow", 100)
	assert.ErrorIs(t, err, group.ErrExhausted)
}

func TestDestroyGroup(t *testing.T) {
	service, shards, _ := newCoordinator(t, 3)
	ctx := context.Background()

	g, err := service.CreateGroup(ctx, "batch", 200)
	require.NoError(t, err)
	require.NoError(t, service.DestroyGroup(ctx, g))

	for _, sh := range shards {
		assert.False(t, liveOn(t, sh, g))
	}

	var invalid *group.InvalidGroupError
	err = service.DestroyGroup(ctx, g)
	assert.ErrorAs(t, err, &invalid)

	err = service.DestroyGroup(ctx, group.Default())
	assert.ErrorAs(t, err, &invalid)
}

func TestRenameGroup(t *testing.T) {
	service, shards, _ := newCoordinator(t, 3)
	ctx := context.Background()

	g, err := service.CreateGroup(ctx, "batch", 200)
	require.NoError(t, err)
	require.NoError(t, service.RenameGroup(ctx, g, "background"))

	for _, sh := range shards {
		assert.Equal(t, "background", nameOn(t, sh, g))
	}

	var invalid *group.InvalidGroupError
	assert.ErrorAs(t, service.RenameGroup(ctx, group.Default(), "other"), &invalid)
	assert.ErrorAs(t, service.RenameGroup(ctx, group.FromIndex(9), "other"), &invalid)
}

func TestCreateKey(t *testing.T) {
	service, shards, aRegistry := newCoordinator(t, 2)
	ctx := context.Background()

	g, err := service.CreateGroup(ctx, "batch", 200)
	require.NoError(t, err)

	zero, err := service.CreateKey(ctx, group.KeyOf[int]())
	require.NoError(t, err)
	initial, err := service.CreateKey(ctx, group.ScalarKey[int](7))
	require.NoError(t, err)
	assert.Equal(t, group.Key(0), zero)
	assert.Equal(t, group.Key(1), initial)
	assert.Equal(t, 2, aRegistry.Count())

	// every live group on every shard holds freshly constructed slots
	for _, sh := range shards {
		require.NoError(t, sh.Submit(ctx, func(taskCtx context.Context) error {
			assert.Equal(t, 0, *group.Get[int](taskCtx, g, zero))
			assert.Equal(t, 7, *group.Get[int](taskCtx, g, initial))
			assert.Equal(t, 0, *group.Get[int](taskCtx, group.Default(), zero))
			assert.Equal(t, 7, *group.Get[int](taskCtx, group.Default(), initial))
			return nil
		}))
	}
}

func TestCreateKeyRollback(t *testing.T) {
	service, shards, aRegistry := newCoordinator(t, 2)
	ctx := context.Background()

	_, err := service.CreateGroup(ctx, "batch", 200)
	require.NoError(t, err)

	// two shards with two live groups each: fail the third of four
	// constructions so one shard applies fully and the other rolls back
	var constructions int32
	var teardowns int32
	failing := group.KeyConfig{
		Construct: func() (interface{}, error) {
			if atomic.AddInt32(&constructions, 1) == 3 {
				return nil, fmt.Errorf("out of memory")
			}
			return new(int), nil
		},
		Teardown: func(interface{}) {
			atomic.AddInt32(&teardowns, 1)
		},
	}

	_, err = service.CreateKey(ctx, failing)
	require.Error(t, err)
	var constructionErr *group.ConstructionError
	assert.ErrorAs(t, err, &constructionErr)

	// the failed registration left no key id behind
	assert.Equal(t, 0, aRegistry.Count())
	// every successful construction was compensated
	assert.Equal(t, atomic.LoadInt32(&constructions)-1, atomic.LoadInt32(&teardowns))

	// the key space is still usable and hands out id 0
	k, err := service.CreateKey(ctx, group.KeyOf[int]())
	require.NoError(t, err)
	assert.Equal(t, group.Key(0), k)

	for _, sh := range shards {
		require.NoError(t, sh.Submit(ctx, func(taskCtx context.Context) error {
			assert.Equal(t, 0, *group.Get[int](taskCtx, group.Default(), k))
			return nil
		}))
	}
}

func TestCreateGroupRollback(t *testing.T) {
	service, shards, _ := newCoordinator(t, 2)
	ctx := context.Background()

	// a key whose constructor fails once: with two shards installing one
	// slot each for the new group, exactly one shard fails
	var constructions int32
	armed := int32(1)
	_, err := service.CreateKey(ctx, group.KeyConfig{
		Construct: func() (interface{}, error) {
			if atomic.AddInt32(&constructions, 1) > 2 && atomic.CompareAndSwapInt32(&armed, 1, 0) {
				return nil, fmt.Errorf("allocation refused")
			}
			return new(int), nil
		},
	})
	require.NoError(t, err)

	g, err := service.CreateGroup(ctx, "doomed", 100)
	require.Error(t, err)
	var constructionErr *group.ConstructionError
	assert.ErrorAs(t, err, &constructionErr)

	// no shard retains the half-initialised group
	for _, sh := range shards {
		assert.False(t, liveOn(t, sh, group.FromIndex(1)))
	}

	// the id is free again and a later create succeeds end to end
	g, err = service.CreateGroup(ctx, "survivor", 100)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Index())
	for _, sh := range shards {
		assert.Equal(t, "survivor", nameOn(t, sh, g))
	}
}

func TestLifecycleDoesNotBlockOnUndrainedEvents(t *testing.T) {
	shards := startShards(t, 2)
	events := event.New(event.WithQueue(memory.NewQueue[event.Event](memory.Config{QueueBuffer: 1})))
	service := New(shards, registry.New(), WithEvents(events))
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		for i := 0; i < 3; i++ {
			g, err := service.CreateGroup(ctx, fmt.Sprintf("batch%d", i), 100)
			if err == nil {
				err = service.RenameGroup(ctx, g, fmt.Sprintf("renamed%d", i))
			}
			if err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("lifecycle operations stalled on event publishing")
	}
}

func TestLifecycleHonoursPreflightCancellation(t *testing.T) {
	service, _, _ := newCoordinator(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.CreateGroup(ctx, "batch", 100)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = service.CreateKey(ctx, group.KeyOf[int]())
	assert.ErrorIs(t, err, context.Canceled)
}
