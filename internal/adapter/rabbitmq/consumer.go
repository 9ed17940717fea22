package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/armelle-pouzioux/GLesCrocs/internal/adapter/logger"
	"github.com/armelle-pouzioux/GLesCrocs/internal/interfaces"
)

type consumer struct {
	conn   Connection
	logger logger.Logger
}

func NewConsumer(conn Connection, lgr logger.Logger) interfaces.EventConsumer {
	return &consumer{conn: conn, logger: lgr}
}

// ConsumeEvents subscribes to the queue_events fanout exchange through an
// exclusive throwaway queue and feeds each delivery to handler, reconnecting
// after broker hiccups until ctx is cancelled.
func (c *consumer) ConsumeEvents(ctx context.Context, handler interfaces.EventHandler) error {
	for {
		err := c.consumeOnce(ctx, handler)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			return nil
		}

		c.logger.Error("consumer_disconnected", "Events consumer disconnected, reconnecting", "", nil, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
}

func (c *consumer) consumeOnce(ctx context.Context, handler interfaces.EventHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := ch.ExchangeDeclare(queueEventsExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, "", queueEventsExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	msgs, err := ch.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return fmt.Errorf("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("messages channel closed")
			}
			// Events are hints, not state; a failed handler is not retried.
			_ = handler(ctx, msg.Body)
		}
	}
}
