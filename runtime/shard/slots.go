package shard

import (
	"fmt"

	"github.com/viant/schedgroup/group"
)

// slotArena owns, per shard, one boxed value per (live group, registered
// key) pair. Rows are indexed by group id, columns by key id; a nil row
// means the id is not live on this shard.
type slotArena struct {
	rows [group.Max][]interface{}
}

// constructGroup builds a full row of slots for a newly installed group,
// one per registered key in ascending key order. On a constructor error the
// already-built slots are torn down in reverse order before the error is
// returned; the row stays absent.
func (a *slotArena) constructGroup(ordinal int, g group.Group, keys []group.KeyConfig) error {
	row := make([]interface{}, len(keys))
	for i := range keys {
		value, err := keys[i].Construct()
		if err != nil {
			a.teardownRange(row, keys, i-1)
			return &group.ConstructionError{Group: g, Key: group.Key(i), Shard: ordinal, Err: err}
		}
		row[i] = value
	}
	a.rows[g.Index()] = row
	return nil
}

// destroyGroup tears down every slot of the group in ascending key order
// and drops the row.
func (a *slotArena) destroyGroup(g group.Group, keys []group.KeyConfig) {
	row := a.rows[g.Index()]
	for i := 0; i < len(row) && i < len(keys); i++ {
		if keys[i].Teardown != nil {
			keys[i].Teardown(row[i])
		}
	}
	a.rows[g.Index()] = nil
}

// constructKey appends one slot for the supplied key to every live group's
// row, in ascending group order. On a constructor error the slots already
// built for this key are torn down in reverse order and every row is
// truncated back, so a failed registration leaves no trace.
func (a *slotArena) constructKey(ordinal int, k group.Key, config group.KeyConfig) error {
	width := int(k)
	for index := 0; index < group.Max; index++ {
		row := a.rows[index]
		if row == nil {
			continue
		}
		if len(row) != width {
			panic(fmt.Sprintf("shard %v group %v arena width %v, expected %v", ordinal, index, len(row), width))
		}
		value, err := config.Construct()
		if err != nil {
			a.removeKey(k, config)
			return &group.ConstructionError{Group: group.FromIndex(index), Key: k, Shard: ordinal, Err: err}
		}
		a.rows[index] = append(row, value)
	}
	return nil
}

// removeKey tears down the supplied key's slot for every live group and
// truncates the rows, undoing a constructKey.
func (a *slotArena) removeKey(k group.Key, config group.KeyConfig) {
	width := int(k)
	for index := group.Max - 1; index >= 0; index-- {
		row := a.rows[index]
		if row == nil || len(row) <= width {
			continue
		}
		if config.Teardown != nil {
			config.Teardown(row[width])
		}
		a.rows[index] = row[:width]
	}
}

// slot returns the boxed value for the (group, key) pair. Asking for an
// absent group or key is a programmer error.
func (a *slotArena) slot(g group.Group, k group.Key) interface{} {
	row := a.rows[g.Index()]
	if row == nil {
		panic(fmt.Sprintf("%v is not live on this shard", g))
	}
	if int(k) < 0 || int(k) >= len(row) {
		panic(fmt.Sprintf("key %v is not registered for %v", k, g))
	}
	return row[int(k)]
}

// teardownRange tears down row[0..last] in reverse order.
func (a *slotArena) teardownRange(row []interface{}, keys []group.KeyConfig, last int) {
	for i := last; i >= 0; i-- {
		if keys[i].Teardown != nil {
			keys[i].Teardown(row[i])
		}
	}
}
