package group

import (
	"reflect"
)

// Key identifies a registered per-group storage slot type. Keys are dense,
// monotonically increasing, identical on every shard and never removed.
type Key int

// KeyConfig describes how to build and tear down one per-group slot value.
// Use the factory helpers below rather than populating it by hand.
type KeyConfig struct {
	// Name optionally labels the key in the type registry; when empty the
	// value type's name is used.
	Name string

	// Type is the value type held by the slot, registered with the runtime
	// type registry for diagnostics and name-based lookup.
	Type reflect.Type

	// Construct builds one boxed slot value. It runs once per shard per
	// live group when the key is registered, and once per shard when a
	// group is later created. A returned error fails the whole lifecycle
	// operation after rollback.
	Construct func() (interface{}, error)

	// Teardown releases a slot value when its group is destroyed. Nil for
	// trivially destructible values.
	Teardown func(interface{})
}

// KeyOf returns a key config that zero-constructs a T per slot, with
// trivial teardown.
func KeyOf[T any]() KeyConfig {
	return KeyConfig{
		Type: reflect.TypeOf((*T)(nil)).Elem(),
		Construct: func() (interface{}, error) {
			return new(T), nil
		},
	}
}

// ScalarKey returns a key config that initialises every slot with a copy
// of the captured initial value, with trivial teardown.
func ScalarKey[T any](initial T) KeyConfig {
	return KeyConfig{
		Type: reflect.TypeOf((*T)(nil)).Elem(),
		Construct: func() (interface{}, error) {
			value := initial
			return &value, nil
		},
	}
}

// KeyWithInit returns a key config whose slots are built by init; arguments
// bound at registration time are captured by the init closure.
func KeyWithInit[T any](init func() (T, error)) KeyConfig {
	return KeyConfig{
		Type: reflect.TypeOf((*T)(nil)).Elem(),
		Construct: func() (interface{}, error) {
			value, err := init()
			if err != nil {
				return nil, err
			}
			return &value, nil
		},
	}
}

// KeyWithTeardown returns a key config whose slots are built by init and
// released by teardown when their group is destroyed.
func KeyWithTeardown[T any](init func() (T, error), teardown func(*T)) KeyConfig {
	config := KeyWithInit[T](init)
	config.Teardown = func(value interface{}) {
		teardown(value.(*T))
	}
	return config
}

// TypeName returns the registry label for the key config.
func (c *KeyConfig) TypeName() string {
	if c.Name != "" {
		return c.Name
	}
	if c.Type != nil {
		return c.Type.String()
	}
	return ""
}
