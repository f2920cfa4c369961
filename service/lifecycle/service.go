package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/viant/schedgroup/group"
	"github.com/viant/schedgroup/runtime/shard"
	"github.com/viant/schedgroup/service/event"
	"github.com/viant/schedgroup/service/registry"
	"github.com/viant/schedgroup/tracing"
)

// Service coordinates group and key lifecycle across all shards. Every
// operation is serialised process-wide: interleaving two id-allocating or
// id-freeing operations over a 16-entry id space could double-allocate or
// double-free, so a single mutex orders them all. Within one operation the
// mutation is broadcast to every shard's mailbox and the caller suspends
// until all shards acknowledge.
type Service struct {
	mu       sync.Mutex
	shards   []*shard.Shard
	registry *registry.Service
	events   *event.Service
	logger   *logrus.Entry
}

// New creates a lifecycle coordinator over the supplied shards.
func New(shards []*shard.Shard, aRegistry *registry.Service, options ...Option) *Service {
	s := &Service{
		shards:   shards,
		registry: aRegistry,
		logger:   logrus.WithField("service", "lifecycle"),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// CreateGroup creates a scheduling group with the supplied name and initial
// shares on every shard. It allocates the lowest free id on the home shard,
// broadcasts descriptor installation and slot construction for every
// registered key, and resolves with the group once all shards confirm. If
// any shard fails, already-applied shards are undone before the error is
// surfaced; no shard is left with a half-initialised group.
func (s *Service) CreateGroup(ctx context.Context, name string, shares float64) (group.Group, error) {
	ctx, span := tracing.StartSpan(ctx, "createSchedulingGroup")
	var err error
	defer func() {
		tracing.EndSpan(span, err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err = ctx.Err(); err != nil {
		return group.Group{}, err
	}

	home := s.shards[0]
	var g group.Group
	if err = home.Submit(ctx, func(context.Context) error {
		allocated, allocErr := home.Allocate()
		g = allocated
		return allocErr
	}); err != nil {
		return group.Group{}, err
	}
	span.WithGroup(g.Index())

	keys := s.registry.Keys()
	applied, installErr := s.broadcast(func(sh *shard.Shard) error {
		return sh.InstallGroup(g, name, shares, keys)
	})
	if installErr != nil {
		s.undo(applied, func(sh *shard.Shard) {
			sh.UninstallGroup(g, keys)
		})
		err = installErr
		return group.Group{}, err
	}

	s.logger.WithFields(logrus.Fields{"group": g.Index(), "name": name}).Info("created scheduling group")
	s.publish(ctx, event.NewEvent("", event.KindGroupCreated, g, name))
	return g, nil
}

// DestroyGroup destroys a scheduling group on every shard: each shard tears
// down the group's slots in ascending key order and frees the id. The id
// becomes eligible for reuse only once every shard has confirmed.
func (s *Service) DestroyGroup(ctx context.Context, g group.Group) error {
	ctx, span := tracing.StartSpan(ctx, "destroySchedulingGroup")
	span.WithGroup(g.Index())
	var err error
	defer func() {
		tracing.EndSpan(span, err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err = s.validate(ctx, g, "destroy"); err != nil {
		return err
	}

	keys := s.registry.Keys()
	_, err = s.broadcast(func(sh *shard.Shard) error {
		sh.UninstallGroup(g, keys)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.WithField("group", g.Index()).Info("destroyed scheduling group")
	s.publish(ctx, event.NewEvent("", event.KindGroupDestroyed, g, ""))
	return nil
}

// RenameGroup updates a group's name on every shard. Shards may transiently
// disagree on the name while the broadcast is in flight; once RenameGroup
// returns, every shard reports the new name.
func (s *Service) RenameGroup(ctx context.Context, g group.Group, name string) error {
	ctx, span := tracing.StartSpan(ctx, "renameSchedulingGroup")
	span.WithGroup(g.Index())
	var err error
	defer func() {
		tracing.EndSpan(span, err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err = s.validate(ctx, g, "rename"); err != nil {
		return err
	}

	_, err = s.broadcast(func(sh *shard.Shard) error {
		sh.Rename(g, name)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{"group": g.Index(), "name": name}).Info("renamed scheduling group")
	s.publish(ctx, event.NewEvent("", event.KindGroupRenamed, g, name))
	return nil
}

// CreateKey registers a per-group storage key: every shard constructs one
// slot per currently-live group, and the key id becomes visible only after
// all shards confirm. On a constructor failure the failing shard rolls its
// own slots back, already-applied shards are undone, and no key id is
// exposed.
func (s *Service) CreateKey(ctx context.Context, config group.KeyConfig) (group.Key, error) {
	ctx, span := tracing.StartSpan(ctx, "schedulingGroupKeyCreate")
	var err error
	defer func() {
		tracing.EndSpan(span, err)
	}()

	if config.Construct == nil {
		err = fmt.Errorf("key config has no constructor")
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err = ctx.Err(); err != nil {
		return 0, err
	}

	staged := s.registry.Next()
	applied, installErr := s.broadcast(func(sh *shard.Shard) error {
		return sh.InstallKey(staged, config)
	})
	if installErr != nil {
		s.undo(applied, func(sh *shard.Shard) {
			sh.RemoveKey(staged, config)
		})
		err = installErr
		return 0, err
	}

	k, commitErr := s.registry.Commit(config)
	if commitErr != nil {
		err = commitErr
		return 0, err
	}

	s.logger.WithFields(logrus.Fields{"key": int(k), "type": config.TypeName()}).Info("registered scheduling group key")
	s.publish(ctx, event.NewKeyEvent("", k, config.TypeName()))
	return k, nil
}

// validate rejects lifecycle operations that target the main group or an id
// that is not currently live, checking liveness on the home shard. The
// caller's context is honoured here, before any shard state is mutated.
func (s *Service) validate(ctx context.Context, g group.Group, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if g.IsMain() {
		return group.NewInvalidGroupError(g, fmt.Sprintf("cannot %v the main group", op))
	}
	home := s.shards[0]
	return home.Submit(ctx, func(context.Context) error {
		if !home.Live(g) {
			return group.NewInvalidGroupError(g, "not currently live")
		}
		return nil
	})
}

// broadcast applies fn on every shard's own loop and joins on all
// acknowledgements. Shards are not cancelled on failure: every shard either
// applies the mutation or reports its error, so the caller knows exactly
// which shards to undo. Returned are the ordinals that applied and the
// first error encountered in shard order.
func (s *Service) broadcast(fn func(sh *shard.Shard) error) ([]int, error) {
	results := make([]error, len(s.shards))
	var g errgroup.Group
	for i := range s.shards {
		sh := s.shards[i]
		index := i
		g.Go(func() error {
			results[index] = sh.Submit(context.Background(), func(context.Context) error {
				return fn(sh)
			})
			return nil
		})
	}
	_ = g.Wait()

	var applied []int
	var err error
	for i, result := range results {
		if result == nil {
			applied = append(applied, i)
			continue
		}
		if err == nil {
			err = result
		}
	}
	return applied, err
}

// undo sends a compensating mutation to every shard that already applied a
// failed broadcast, and waits for all of them.
func (s *Service) undo(applied []int, fn func(sh *shard.Shard)) {
	var g errgroup.Group
	for _, ordinal := range applied {
		sh := s.shards[ordinal]
		g.Go(func() error {
			return sh.Submit(context.Background(), func(context.Context) error {
				fn(sh)
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.WithError(err).Error("undoing partially applied lifecycle operation")
	}
}

func (s *Service) publish(ctx context.Context, anEvent *event.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, anEvent); err != nil {
		s.logger.WithError(err).Debug("publishing lifecycle event")
	}
}

// Option customises the lifecycle service.
type Option func(*Service)

// WithEvents sets the lifecycle event service.
func WithEvents(events *event.Service) Option {
	return func(s *Service) {
		s.events = events
	}
}

// WithLogger sets the coordinator logger.
func WithLogger(logger *logrus.Entry) Option {
	return func(s *Service) {
		s.logger = logger
	}
}
