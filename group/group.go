package group

import (
	"context"
	"fmt"
)

// Max is the fixed capacity of the scheduling-group id space. Group ids are
// dense integers in [0, Max); id 0 is the permanently live main group.
const Max = 16

// Group identifies a scheduling group. All tasks tagged with the same group
// are accounted and weighted together by the per-shard dispatcher. The zero
// value denotes the main group and is always valid.
type Group struct {
	id uint32
}

// Default returns the main scheduling group (id 0).
func Default() Group {
	return Group{}
}

// FromIndex mints a group from its numeric id. It is reserved for the
// runtime and its lifecycle coordinator; applications obtain groups from
// CreateGroup and must not fabricate ids.
func FromIndex(index int) Group {
	if index < 0 || index >= Max {
		panic(fmt.Sprintf("group index %v out of range [0, %v)", index, Max))
	}
	return Group{id: uint32(index)}
}

// Index returns the numeric id of the group.
func (g Group) Index() int {
	return int(g.id)
}

// Hash returns the group's hash value, which equals its numeric id so that
// a group can index dense arrays directly without a secondary map.
func (g Group) Hash() uint64 {
	return uint64(g.id)
}

// IsMain reports whether the group is the main group.
func (g Group) IsMain() bool {
	return g.id == 0
}

// Name returns the group name as recorded on the calling shard. Names are
// replicated identically across shards by the lifecycle coordinator, so the
// result is process-wide consistent except while a rename is in flight.
func (g Group) Name(ctx context.Context) string {
	return StateOf(ctx).GroupName(g)
}

// Active reports whether the group is the one currently executing on the
// calling shard.
func (g Group) Active(ctx context.Context) bool {
	return StateOf(ctx).CurrentGroup() == g
}

// Shares returns the group's CPU shares on the calling shard.
func (g Group) Shares(ctx context.Context) float64 {
	return StateOf(ctx).GroupShares(g)
}

// SetShares adjusts the number of CPU shares allotted to the group on the
// calling shard only. The new weight takes effect for the dispatcher's next
// scheduling decision on that shard and never propagates to other shards.
func (g Group) SetShares(ctx context.Context, shares float64) {
	StateOf(ctx).SetGroupShares(g, shares)
}

// String implements fmt.Stringer.
func (g Group) String() string {
	return fmt.Sprintf("group(%d)", g.id)
}

// Current returns the group currently executing on the calling shard.
func Current(ctx context.Context) Group {
	return StateOf(ctx).CurrentGroup()
}

// Get returns the calling shard's slot value for the (group, key) pair.
// The value was constructed by the key's factory when the group or the key
// was created, whichever came later, and lives until the group is
// destroyed. Calling with a group or key that does not exist on the calling
// shard, or with a T other than the key's registered type, is a programmer
// error and panics.
func Get[T any](ctx context.Context, g Group, k Key) *T {
	value := StateOf(ctx).Slot(g, k)
	typed, ok := value.(*T)
	if !ok {
		panic(fmt.Sprintf("slot (%v, key %v) holds %T, not %T", g, k, value, (*T)(nil)))
	}
	return typed
}
