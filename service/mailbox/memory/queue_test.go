package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type TestPayload struct {
	ID    string
	Count int
}

func TestQueue(t *testing.T) {
	queue := NewQueue[TestPayload](DefaultConfig())
	ctx := context.Background()
	payload := TestPayload{ID: "test-1", Count: 1}

	err := queue.Publish(ctx, &payload)
	assert.NoError(t, err)
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, message)
	assert.Equal(t, 0, queue.Size())

	msgData := message.T()
	assert.Equal(t, payload.ID, msgData.ID)
	assert.Equal(t, payload.Count, msgData.Count)

	err = message.Ack()
	assert.NoError(t, err)

	// double ack should error
	err = message.Ack()
	assert.Error(t, err)
}

func TestQueueNack(t *testing.T) {
	queue := NewQueue[TestPayload](Config{QueueBuffer: 4})
	ctx := context.Background()

	err := queue.Publish(ctx, &TestPayload{ID: "nack-test"})
	assert.NoError(t, err)

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NoError(t, message.Nack(fmt.Errorf("processing failed")))

	// no redelivery: failure handling belongs to the coordinator undo path
	assert.Equal(t, 0, queue.Size())
	assert.Error(t, message.Ack())
}

func TestQueueTryPublish(t *testing.T) {
	queue := NewQueue[TestPayload](Config{QueueBuffer: 2})

	assert.True(t, queue.TryPublish(&TestPayload{ID: "a"}))
	assert.True(t, queue.TryPublish(&TestPayload{ID: "b"}))
	// buffer full: the item is dropped instead of blocking the caller
	assert.False(t, queue.TryPublish(&TestPayload{ID: "c"}))
	assert.Equal(t, 2, queue.Size())
}

func TestQueueTryConsume(t *testing.T) {
	queue := NewQueue[TestPayload](Config{QueueBuffer: 2})

	message, ok := queue.TryConsume()
	assert.False(t, ok)
	assert.Nil(t, message)

	assert.True(t, queue.TryPublish(&TestPayload{ID: "a"}))
	message, ok = queue.TryConsume()
	assert.True(t, ok)
	assert.Equal(t, "a", message.T().ID)
}

func TestQueueConsumeHonoursContext(t *testing.T) {
	queue := NewQueue[TestPayload](DefaultConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := queue.Consume(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
