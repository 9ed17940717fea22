package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/armelle-pouzioux/GLesCrocs/internal/interfaces"
)

// queueEventsExchange fans queue events out to every connected relay.
const queueEventsExchange = "queue_events"

type publisher struct {
	conn Connection
}

// NewPublisher returns the production notification hook, publishing queue
// events to a fanout exchange.
func NewPublisher(conn Connection) interfaces.EventPublisher {
	return &publisher{conn: conn}
}

func (p *publisher) QueueChanged(ctx context.Context) error {
	return p.publish(interfaces.QueueEvent{
		Event:     interfaces.EventQueueChanged,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (p *publisher) OrderReady(ctx context.Context, orderID int64, ticketNumber int) error {
	return p.publish(interfaces.QueueEvent{
		Event:        interfaces.EventOrderReady,
		OrderID:      orderID,
		TicketNumber: ticketNumber,
		Timestamp:    time.Now().UnixMilli(),
	})
}

func (p *publisher) publish(event interfaces.QueueEvent) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(queueEventsExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = ch.Publish(queueEventsExchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
