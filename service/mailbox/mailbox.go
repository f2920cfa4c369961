package mailbox

import (
	"context"
)

// Queue represents an abstract mailbox for any payload type. Each shard
// owns one queue; publishing is safe from any goroutine while consumption
// happens only on the owning shard's loop.
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack records a processing failure for this message
	Nack(err error) error
}
