package shard

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/viant/schedgroup/group"
	"github.com/viant/schedgroup/service/mailbox"
	"github.com/viant/schedgroup/service/mailbox/memory"
)

// ErrStopped is returned by Submit when the shard loop has exited and the
// task will never run.
var ErrStopped = errors.New("shard stopped")

// Task is one unit of work delivered to a shard's mailbox. Run executes on
// the shard's own loop with the shard state bound into the context.
type Task struct {
	Run   func(ctx context.Context) error
	reply chan error
}

// Config represents shard configuration
type Config struct {
	// MailboxBuffer bounds the shard's inbound mailbox.
	MailboxBuffer int

	// MainName is the main group's descriptor name.
	MainName string

	// MainShares is the main group's initial shard-local CPU shares.
	MainShares float64
}

// DefaultConfig returns the default shard configuration
func DefaultConfig() Config {
	return Config{
		MailboxBuffer: 128,
		MainName:      "main",
		MainShares:    1000,
	}
}

// Shard is one single-goroutine execution core. All of its state - the
// group table, the slot arena and the current-group cell - is mutated only
// on its own loop; cross-shard effects arrive as mailbox tasks.
type Shard struct {
	ordinal    int
	queue      mailbox.Queue[Task]
	table      *Table
	arena      slotArena
	current    group.Group
	logger     *logrus.Entry
	shutdownCh chan struct{}
	done       chan struct{}
}

// New creates a shard with the main group installed.
func New(ordinal int, config Config) *Shard {
	if config.MailboxBuffer <= 0 {
		config.MailboxBuffer = DefaultConfig().MailboxBuffer
	}
	if config.MainName == "" {
		config.MainName = DefaultConfig().MainName
	}
	if config.MainShares <= 0 {
		config.MainShares = DefaultConfig().MainShares
	}
	s := &Shard{
		ordinal:    ordinal,
		queue:      memory.NewQueue[Task](memory.Config{QueueBuffer: config.MailboxBuffer}),
		table:      NewTable(config.MainName, config.MainShares),
		logger:     logrus.WithField("shard", ordinal),
		shutdownCh: make(chan struct{}),
		done:       make(chan struct{}),
	}
	s.arena.rows[0] = []interface{}{}
	return s
}

// Ordinal returns the shard's index within the runtime.
func (s *Shard) Ordinal() int {
	return s.ordinal
}

// Run consumes the shard's mailbox until the context is cancelled or the
// shard is shut down. On exit it fails whatever tasks are still queued so
// no submitter is left waiting. It must be called exactly once, and is the
// only goroutine that ever touches the shard's tables.
func (s *Shard) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer func() {
		s.drain()
		close(s.done)
	}()
	go func() {
		select {
		case <-s.shutdownCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	taskCtx := group.WithState(ctx, s)
	for {
		select {
		case <-s.shutdownCh:
			return nil
		case <-ctx.Done():
			if err := ctx.Err(); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		default:
		}
		msg, err := s.queue.Consume(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		task := msg.T()
		if err := task.Run(taskCtx); err != nil {
			s.logger.WithError(err).Debug("task failed")
			_ = msg.Nack(err)
			task.ack(err)
			continue
		}
		_ = msg.Ack()
		task.ack(nil)
	}
}

// Shutdown stops the shard loop. Tasks still in the mailbox when the loop
// exits are failed with ErrStopped rather than executed.
func (s *Shard) Shutdown() {
	select {
	case <-s.shutdownCh:
	default:
		close(s.shutdownCh)
	}
}

// drain fails every task left in the mailbox once the loop has exited.
func (s *Shard) drain() {
	queue, ok := s.queue.(interface {
		TryConsume() (mailbox.Message[Task], bool)
	})
	if !ok {
		return
	}
	for {
		msg, ok := queue.TryConsume()
		if !ok {
			return
		}
		task := msg.T()
		_ = msg.Nack(ErrStopped)
		task.ack(ErrStopped)
	}
}

func (t *Task) ack(err error) {
	if t.reply == nil {
		return
	}
	t.reply <- err
}

// Submit enqueues fn on the shard's loop and waits for its result. The
// context guards the wait only; once consumed, fn runs to completion
// regardless of cancellation. When the shard loop has exited Submit
// returns ErrStopped instead of waiting forever.
func (s *Shard) Submit(ctx context.Context, fn func(ctx context.Context) error) error {
	task := Task{Run: fn, reply: make(chan error, 1)}
	if err := s.queue.Publish(ctx, &task); err != nil {
		return err
	}
	select {
	case err := <-task.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		// the loop drains the mailbox before closing done, so any reply
		// for this task is already buffered
		select {
		case err := <-task.reply:
			return err
		default:
			return ErrStopped
		}
	}
}

// RunAs executes fn on the shard's loop with the current-group cell set to
// g, restoring the previous value afterwards even when fn fails. This
// bracket is the only writer of the current-group cell.
func (s *Shard) RunAs(ctx context.Context, g group.Group, fn func(ctx context.Context) error) error {
	return s.Submit(ctx, func(taskCtx context.Context) error {
		if !s.table.Live(g) {
			return group.NewInvalidGroupError(g, "not live on shard")
		}
		previous := s.current
		s.current = g
		defer func() {
			s.current = previous
		}()
		return fn(taskCtx)
	})
}

// GroupName implements group.State.
func (s *Shard) GroupName(g group.Group) string {
	return s.table.Descriptor(g).Name
}

// GroupShares implements group.State.
func (s *Shard) GroupShares(g group.Group) float64 {
	return s.table.Descriptor(g).Shares
}

// SetGroupShares implements group.State.
func (s *Shard) SetGroupShares(g group.Group, shares float64) {
	s.table.SetShares(g, shares)
}

// CurrentGroup implements group.State.
func (s *Shard) CurrentGroup() group.Group {
	return s.current
}

// Slot implements group.State.
func (s *Shard) Slot(g group.Group, k group.Key) interface{} {
	return s.arena.slot(g, k)
}

var _ group.State = (*Shard)(nil)

// The methods below apply broadcast lifecycle mutations. They mutate shard
// state directly and must only be called from tasks running on the shard's
// own loop.

// Allocate picks the lowest free group id on this shard.
func (s *Shard) Allocate() (group.Group, error) {
	return s.table.Allocate()
}

// InstallGroup constructs one slot per registered key for g and then
// records its live descriptor. A constructor error leaves neither slots nor
// descriptor behind.
func (s *Shard) InstallGroup(g group.Group, name string, shares float64, keys []group.KeyConfig) error {
	if err := s.arena.constructGroup(s.ordinal, g, keys); err != nil {
		return err
	}
	s.table.Install(g, name, shares)
	return nil
}

// UninstallGroup tears down g's slots in ascending key order and frees its
// id on this shard.
func (s *Shard) UninstallGroup(g group.Group, keys []group.KeyConfig) {
	s.arena.destroyGroup(g, keys)
	s.table.Free(g)
}

// Rename updates g's descriptor name on this shard.
func (s *Shard) Rename(g group.Group, name string) {
	s.table.Rename(g, name)
}

// Live reports whether g is currently live on this shard.
func (s *Shard) Live(g group.Group) bool {
	return s.table.Live(g)
}

// InstallKey constructs the key's slot for every live group on this shard.
func (s *Shard) InstallKey(k group.Key, config group.KeyConfig) error {
	return s.arena.constructKey(s.ordinal, k, config)
}

// RemoveKey undoes InstallKey, tearing down the key's slots for every live
// group.
func (s *Shard) RemoveKey(k group.Key, config group.KeyConfig) {
	s.arena.removeKey(k, config)
}

// GroupInfo is one entry of a dispatcher snapshot.
type GroupInfo struct {
	Group  group.Group
	Name   string
	Shares float64
}

// Snapshot returns the live groups of this shard with their shard-local
// shares, for the fair-share dispatcher to weight its next decision.
func (s *Shard) Snapshot() []GroupInfo {
	var result []GroupInfo
	for i := 0; i < group.Max; i++ {
		g := group.FromIndex(i)
		descriptor := s.table.Descriptor(g)
		if !descriptor.Live {
			continue
		}
		result = append(result, GroupInfo{Group: g, Name: descriptor.Name, Shares: descriptor.Shares})
	}
	return result
}
