package event

import (
	"time"

	"github.com/viant/schedgroup/group"
)

// Kind enumerates lifecycle event kinds.
type Kind string

const (
	KindGroupCreated   = Kind("groupCreated")
	KindGroupDestroyed = Kind("groupDestroyed")
	KindGroupRenamed   = Kind("groupRenamed")
	KindKeyRegistered  = Kind("keyRegistered")
)

// Event describes one resolved lifecycle operation. Events are published
// only after every shard has acknowledged the mutation, so an observer
// never sees a group or key that some shard still lacks.
type Event struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Group     *int      `json:"group,omitempty"`
	Key       *int      `json:"key,omitempty"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewEvent creates a group lifecycle event.
func NewEvent(id string, kind Kind, g group.Group, name string) *Event {
	index := g.Index()
	return &Event{ID: id, Kind: kind, Group: &index, Name: name}
}

// NewKeyEvent creates a key registration event.
func NewKeyEvent(id string, k group.Key, name string) *Event {
	key := int(k)
	return &Event{ID: id, Kind: KindKeyRegistered, Key: &key, Name: name}
}
