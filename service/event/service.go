package event

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/viant/schedgroup/internal/clock"
	"github.com/viant/schedgroup/internal/idgen"
	"github.com/viant/schedgroup/service/mailbox"
	"github.com/viant/schedgroup/service/mailbox/memory"
)

// Service fans lifecycle events out to an optional listener over an
// in-memory queue. Publishing is best-effort and never blocks a
// lifecycle operation.
type Service struct {
	queue    mailbox.Queue[Event]
	mux      sync.Mutex
	listener *Listener
}

// New creates an event service.
func New(opts ...Option) *Service {
	ret := &Service{}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.queue == nil {
		ret.queue = memory.NewQueue[Event](memory.DefaultConfig())
	}
	return ret
}

// Publish stamps and enqueues an event. Events are dropped when no
// listener is installed, and when the queue is saturated on queues that
// support a non-blocking publish, so a slow or absent consumer cannot
// stall the publisher.
func (s *Service) Publish(ctx context.Context, anEvent *Event) error {
	s.mux.Lock()
	listening := s.listener != nil
	s.mux.Unlock()
	if !listening {
		return nil
	}
	if anEvent.ID == "" {
		anEvent.ID = idgen.New()
	}
	anEvent.CreatedAt = clock.Now()
	if queue, ok := s.queue.(interface{ TryPublish(t *Event) bool }); ok {
		if !queue.TryPublish(anEvent) {
			logrus.WithField("kind", anEvent.Kind).Debug("dropping lifecycle event: queue saturated")
		}
		return nil
	}
	return s.queue.Publish(ctx, anEvent)
}

// SetListener installs handler as the single event consumer, replacing any
// previous one.
func (s *Service) SetListener(handler func(*Event)) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.listener != nil {
		s.listener.Stop()
	}
	s.listener = NewListener(s.queue, handler)
	s.listener.Start()
}

// Shutdown stops the listener, if any.
func (s *Service) Shutdown() {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.listener != nil {
		s.listener.Stop()
		s.listener = nil
	}
}

// Option customises the event service.
type Option func(*Service)

// WithQueue sets the event queue.
func WithQueue(queue mailbox.Queue[Event]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}
