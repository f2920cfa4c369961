package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/schedgroup/service/mailbox"
)

// Config for the in-memory mailbox implementation
type Config struct {
	// QueueBuffer bounds the number of undelivered messages; publishers
	// block once the buffer is full.
	QueueBuffer int
}

// DefaultConfig returns a standard configuration for the memory mailbox
func DefaultConfig() Config {
	return Config{
		QueueBuffer: 128,
	}
}

// Message implements mailbox.Message for the in-memory queue
type Message[T any] struct {
	id        string
	payload   T
	mu        sync.Mutex
	processed bool
	err       error
	createdAt time.Time
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.payload
}

// Ack acknowledges the message as processed successfully
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.processed {
		return fmt.Errorf("message %v already processed", m.id)
	}
	m.processed = true
	return nil
}

// Nack records a processing failure. Shard tasks are never redelivered;
// failure handling belongs to the lifecycle coordinator's undo path, so a
// nacked message is simply marked processed with the supplied error.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.processed {
		return fmt.Errorf("message %v already processed", m.id)
	}
	m.processed = true
	m.err = err
	return nil
}

// Queue implements an in-memory mailbox.Queue
type Queue[T any] struct {
	messages chan *Message[T]
	config   Config
}

// NewQueue creates a new in-memory queue
func NewQueue[T any](config Config) *Queue[T] {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.QueueBuffer),
		config:   config,
	}
}

// Publish adds a new item to the queue
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	msg := &Message[T]{
		id:        uuid.New().String(),
		payload:   *t,
		createdAt: time.Now(),
	}
	select {
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPublish adds a new item without blocking. It reports false when the
// buffer is full and the item was dropped.
func (q *Queue[T]) TryPublish(t *T) bool {
	msg := &Message[T]{
		id:        uuid.New().String(),
		payload:   *t,
		createdAt: time.Now(),
	}
	select {
	case q.messages <- msg:
		return true
	default:
		return false
	}
}

// Consume retrieves a single item from the queue
func (q *Queue[T]) Consume(ctx context.Context) (mailbox.Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryConsume retrieves a single item without blocking; ok is false when
// the queue is empty.
func (q *Queue[T]) TryConsume() (mailbox.Message[T], bool) {
	select {
	case msg := <-q.messages:
		return msg, true
	default:
		return nil, false
	}
}

// Size returns the current number of messages in the queue
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// ensure Queue implements mailbox.Queue interface
var _ mailbox.Queue[any] = (*Queue[any])(nil)
