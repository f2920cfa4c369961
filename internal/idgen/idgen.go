package idgen

import "github.com/google/uuid"

// NewFunc generates the identifiers assigned to lifecycle events. Tests
// stub it to make event ids predictable.
var NewFunc = func() string { return uuid.New().String() }

// New returns a fresh event identifier.
func New() string { return NewFunc() }
