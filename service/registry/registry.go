package registry

import (
	"fmt"
	"sync"

	"github.com/viant/schedgroup/group"
	"github.com/viant/x"
)

// Service is the process-wide list of registered scheduling-group keys.
// The list only grows: keys are never unregistered, so a key id stays valid
// for the process's entire lifetime. Slot construction and teardown are
// driven by the lifecycle coordinator; the registry only records the
// configs and hands out dense ids.
type Service struct {
	mu    sync.RWMutex
	keys  []group.KeyConfig
	types *x.Registry
}

// New creates an empty key registry.
func New() *Service {
	return &Service{
		types: x.NewRegistry(),
	}
}

// Next returns the id the next committed key will receive. The coordinator
// stages this id while broadcasting slot construction; it becomes visible
// only once Commit runs.
func (s *Service) Next() group.Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return group.Key(len(s.keys))
}

// Commit appends a key config and returns its id. The config's value type
// is registered with the type registry under the config's label.
func (s *Service) Commit(config group.KeyConfig) (group.Key, error) {
	if config.Construct == nil {
		return 0, fmt.Errorf("key config has no constructor")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := group.Key(len(s.keys))
	s.keys = append(s.keys, config)
	if config.Type != nil {
		s.types.Register(x.NewType(config.Type, x.WithName(config.TypeName())))
	}
	return k, nil
}

// Keys returns a snapshot of all committed key configs in id order.
func (s *Service) Keys() []group.KeyConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]group.KeyConfig, len(s.keys))
	copy(result, s.keys)
	return result
}

// Key returns the config committed under the supplied id.
func (s *Service) Key(k group.Key) (group.KeyConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(k) < 0 || int(k) >= len(s.keys) {
		return group.KeyConfig{}, false
	}
	return s.keys[int(k)], true
}

// Count returns the number of committed keys.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

// LookupType returns the registered value type for the supplied label, or
// nil when unknown.
func (s *Service) LookupType(name string) *x.Type {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.types.Lookup(name)
}
