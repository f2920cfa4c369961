package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/schedgroup/group"
)

func TestRegistryCommit(t *testing.T) {
	service := New()
	assert.Equal(t, 0, service.Count())
	assert.Equal(t, group.Key(0), service.Next())

	first, err := service.Commit(group.KeyOf[int]())
	require.NoError(t, err)
	assert.Equal(t, group.Key(0), first)

	second, err := service.Commit(group.ScalarKey[float64](1.5))
	require.NoError(t, err)
	assert.Equal(t, group.Key(1), second)
	assert.Equal(t, group.Key(2), service.Next())
	assert.Equal(t, 2, service.Count())

	config, ok := service.Key(first)
	assert.True(t, ok)
	value, err := config.Construct()
	require.NoError(t, err)
	assert.Equal(t, 0, *value.(*int))

	_, ok = service.Key(group.Key(9))
	assert.False(t, ok)
}

func TestRegistryRejectsMissingConstructor(t *testing.T) {
	service := New()
	_, err := service.Commit(group.KeyConfig{})
	assert.Error(t, err)
}

func TestRegistryTypeLookup(t *testing.T) {
	service := New()
	config := group.KeyOf[uint64]()
	config.Name = "ioBacklog"
	_, err := service.Commit(config)
	require.NoError(t, err)

	registered := service.LookupType("ioBacklog")
	require.NotNil(t, registered)
	assert.Equal(t, config.Type, registered.Type)
}
