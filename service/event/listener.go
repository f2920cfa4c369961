package event

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/viant/schedgroup/service/mailbox"
)

// Listener consumes events from a queue and invokes a handler for each.
type Listener struct {
	queue   mailbox.Queue[Event]
	handler func(*Event)
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewListener creates a listener for the supplied queue and handler.
func NewListener(queue mailbox.Queue[Event], handler func(*Event)) *Listener {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener{
		queue:   queue,
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Stop terminates the listener loop.
func (l *Listener) Stop() {
	l.cancel()
}

// Start launches the listener loop.
func (l *Listener) Start() {
	go func() {
		for {
			msg, err := l.queue.Consume(l.ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				logrus.WithError(err).Error("consuming lifecycle event")
				continue
			}
			l.handler(msg.T())
			_ = msg.Ack()
		}
	}()
}
