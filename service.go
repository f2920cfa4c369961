package schedgroup

import (
	"github.com/viant/schedgroup/runtime/shard"
	"github.com/viant/schedgroup/service/event"
	"github.com/viant/schedgroup/service/lifecycle"
	"github.com/viant/schedgroup/service/registry"
)

// Service assembles the scheduling-group runtime: the shard executors, the
// key registry, the lifecycle coordinator and the event service.
type Service struct {
	config   *Config
	runtime  *Runtime
	registry *registry.Service
	events   *event.Service
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()

	shards := make([]*shard.Shard, s.config.Shards)
	for i := range shards {
		shards[i] = shard.New(i, shard.Config{
			MailboxBuffer: s.config.Mailbox.Buffer,
			MainName:      s.config.Main.Name,
			MainShares:    s.config.Main.Shares,
		})
	}
	s.runtime.shards = shards
	s.runtime.registry = s.registry
	s.runtime.events = s.events
	s.runtime.lifecycle = lifecycle.New(shards, s.registry, lifecycle.WithEvents(s.events))
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.registry == nil {
		s.registry = registry.New()
	}
	if s.events == nil {
		s.events = event.New()
	}
}

// Runtime returns the assembled runtime.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// New creates a Service with the supplied options.
func New(options ...Option) *Service {
	ret := &Service{runtime: &Runtime{}}
	ret.init(options)
	return ret
}
