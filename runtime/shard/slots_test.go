package shard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/schedgroup/group"
)

func trackingKey(log *[]string, label string, failOn int) group.KeyConfig {
	count := 0
	return group.KeyConfig{
		Construct: func() (interface{}, error) {
			count++
			if failOn > 0 && count == failOn {
				return nil, fmt.Errorf("%v construction failed", label)
			}
			*log = append(*log, "construct "+label)
			value := label
			return &value, nil
		},
		Teardown: func(interface{}) {
			*log = append(*log, "teardown "+label)
		},
	}
}

func TestArenaConstructGroupRollback(t *testing.T) {
	var log []string
	keys := []group.KeyConfig{
		trackingKey(&log, "a", 0),
		trackingKey(&log, "b", 0),
		trackingKey(&log, "c", 1),
	}
	arena := &slotArena{}
	g := group.FromIndex(1)

	err := arena.constructGroup(0, g, keys)
	require.Error(t, err)
	var constructionErr *group.ConstructionError
	require.ErrorAs(t, err, &constructionErr)
	assert.Equal(t, g, constructionErr.Group)
	assert.Equal(t, group.Key(2), constructionErr.Key)

	// the two constructed slots were rolled back in reverse order
	assert.Equal(t, []string{"construct a", "construct b", "teardown b", "teardown a"}, log)
	assert.Nil(t, arena.rows[g.Index()])
}

func TestArenaDestroyGroupOrder(t *testing.T) {
	var log []string
	keys := []group.KeyConfig{
		trackingKey(&log, "a", 0),
		trackingKey(&log, "b", 0),
	}
	arena := &slotArena{}
	g := group.FromIndex(3)
	require.NoError(t, arena.constructGroup(0, g, keys))

	log = nil
	arena.destroyGroup(g, keys)
	// teardown runs in ascending key order
	assert.Equal(t, []string{"teardown a", "teardown b"}, log)
	assert.Nil(t, arena.rows[g.Index()])
}

func TestArenaConstructKeyRollback(t *testing.T) {
	arena := &slotArena{}
	// three live groups with no keys yet
	for _, index := range []int{0, 2, 5} {
		arena.rows[index] = []interface{}{}
	}

	var log []string
	failing := trackingKey(&log, "k", 3)
	err := arena.constructKey(0, group.Key(0), failing)
	require.Error(t, err)
	var constructionErr *group.ConstructionError
	require.ErrorAs(t, err, &constructionErr)
	assert.Equal(t, 5, constructionErr.Group.Index())

	// the slots built for groups 0 and 2 were removed again
	for _, index := range []int{0, 2, 5} {
		assert.Empty(t, arena.rows[index])
	}
	assert.Equal(t, []string{"construct k", "construct k", "teardown k", "teardown k"}, log)
}

func TestArenaSlotAccess(t *testing.T) {
	var log []string
	keys := []group.KeyConfig{trackingKey(&log, "a", 0)}
	arena := &slotArena{}
	g := group.FromIndex(1)
	require.NoError(t, arena.constructGroup(0, g, keys))

	assert.Equal(t, "a", *arena.slot(g, 0).(*string))
	assert.Panics(t, func() {
		arena.slot(group.FromIndex(2), 0)
	})
	assert.Panics(t, func() {
		arena.slot(g, 1)
	})
}
