package shard

import (
	"github.com/viant/schedgroup/group"
)

// Descriptor is one shard's record of a scheduling group. Name and Live are
// replicated identically across shards by the lifecycle coordinator; Shares
// is a deliberate shard-local tuning knob and never synchronised.
type Descriptor struct {
	Name   string
	Shares float64
	Live   bool
}

// Table holds one shard's fixed-capacity array of group descriptors. It is
// written only by the owning shard's application of broadcast lifecycle
// mutations and by SetShares calls from tasks running on that shard.
type Table struct {
	descriptors [group.Max]Descriptor
}

// NewTable creates a table with the main group installed.
func NewTable(mainName string, mainShares float64) *Table {
	t := &Table{}
	t.descriptors[0] = Descriptor{Name: mainName, Shares: mainShares, Live: true}
	return t
}

// Allocate scans for the lowest-numbered free id. The scan is deterministic
// so that all shards agree given identical operation order; it runs only
// under the lifecycle coordinator's global serialisation.
func (t *Table) Allocate() (group.Group, error) {
	for i := 0; i < group.Max; i++ {
		if !t.descriptors[i].Live {
			return group.FromIndex(i), nil
		}
	}
	return group.Group{}, group.ErrExhausted
}

// Free marks a group id free for reuse. Freeing the main group id is a
// programmer error and panics.
func (t *Table) Free(g group.Group) {
	if g.IsMain() {
		panic("cannot free the main scheduling group")
	}
	t.descriptors[g.Index()] = Descriptor{}
}

// Install records a live descriptor for the supplied group.
func (t *Table) Install(g group.Group, name string, shares float64) {
	t.descriptors[g.Index()] = Descriptor{Name: name, Shares: shares, Live: true}
}

// Rename updates a group's name.
func (t *Table) Rename(g group.Group, name string) {
	t.descriptors[g.Index()].Name = name
}

// Live reports whether the supplied group id is currently live.
func (t *Table) Live(g group.Group) bool {
	return t.descriptors[g.Index()].Live
}

// Descriptor returns the descriptor of the supplied group.
func (t *Table) Descriptor(g group.Group) Descriptor {
	return t.descriptors[g.Index()]
}

// SetShares updates a group's shard-local CPU shares.
func (t *Table) SetShares(g group.Group, shares float64) {
	t.descriptors[g.Index()].Shares = shares
}
