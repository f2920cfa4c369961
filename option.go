package schedgroup

import (
	"github.com/viant/schedgroup/service/event"
	"github.com/viant/schedgroup/service/registry"
	"github.com/viant/schedgroup/tracing"
)

// Option customises the Service
type Option func(s *Service)

// WithConfig sets the runtime configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithShards sets the number of shards.
func WithShards(count int) Option {
	return func(s *Service) {
		if s.config == nil {
			s.config = DefaultConfig()
		}
		s.config.Shards = count
	}
}

// WithMailboxBuffer sets the per-shard mailbox buffer.
func WithMailboxBuffer(buffer int) Option {
	return func(s *Service) {
		if s.config == nil {
			s.config = DefaultConfig()
		}
		s.config.Mailbox.Buffer = buffer
	}
}

// WithMainGroup sets the name and initial shares of the permanent main
// group.
func WithMainGroup(name string, shares float64) Option {
	return func(s *Service) {
		if s.config == nil {
			s.config = DefaultConfig()
		}
		s.config.Main = MainConfig{Name: name, Shares: shares}
	}
}

// WithEventService sets the lifecycle event service.
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.events = service
	}
}

// WithRegistry sets the key registry.
func WithRegistry(service *registry.Service) Option {
	return func(s *Service) {
		s.registry = service
	}
}

// WithTracing configures OpenTelemetry tracing for lifecycle operations. If
// outputFile is empty the stdout exporter is used; otherwise traces are
// written to the supplied file path. Safe to call multiple times - the
// first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}
