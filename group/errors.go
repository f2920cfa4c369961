package group

import (
	"errors"
	"fmt"
)

// ErrExhausted is returned by group creation when all ids are live.
var ErrExhausted = errors.New("scheduling group id space exhausted")

// InvalidGroupError is returned by destroy and rename when the target group
// is the main group or is not currently live.
type InvalidGroupError struct {
	Group  Group
	Reason string
}

func (e *InvalidGroupError) Error() string {
	return fmt.Sprintf("invalid scheduling group %v: %v", e.Group, e.Reason)
}

// NewInvalidGroupError creates an InvalidGroupError.
func NewInvalidGroupError(g Group, reason string) error {
	return &InvalidGroupError{Group: g, Reason: reason}
}

// ConstructionError is returned when a key's constructor fails while slots
// are installed for a new group or a new key. By the time it surfaces all
// slots constructed by the failing operation have been torn down again; no
// shard retains a half-initialised group or a partially visible key.
type ConstructionError struct {
	Group Group
	Key   Key
	Shard int
	Err   error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("constructing slot (%v, key %v) on shard %v: %v", e.Group, e.Key, e.Shard, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}
