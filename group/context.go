package group

import (
	"context"
	"reflect"
)

// State is the shard-local view that group queries resolve against. It is
// implemented by the shard executor and bound into the context of every
// task it runs; group code never reaches for ambient global state.
type State interface {
	// GroupName returns the descriptor name of a live group.
	GroupName(g Group) string

	// GroupShares returns the shard-local CPU shares of a live group.
	GroupShares(g Group) float64

	// SetGroupShares updates the shard-local CPU shares of a live group.
	SetGroupShares(g Group, shares float64)

	// CurrentGroup returns the group currently executing on the shard.
	CurrentGroup() Group

	// Slot returns the boxed slot value for the (group, key) pair.
	Slot(g Group, k Key) interface{}
}

var stateKey = keyOf[State]()

// WithState returns a context carrying the supplied shard-local state.
func WithState(ctx context.Context, state State) context.Context {
	return context.WithValue(ctx, stateKey, state)
}

// StateOf returns the shard-local state bound into the context. Calling it
// outside a shard task is a programmer error and panics.
func StateOf(ctx context.Context) State {
	if value := ctx.Value(stateKey); value != nil {
		return value.(State)
	}
	panic("context carries no shard state; group queries must run on a shard")
}

// keyOf returns the reflect.Type of the provided type, used as context key.
func keyOf[T any]() reflect.Type {
	var t T
	return reflect.TypeOf(&t).Elem()
}
