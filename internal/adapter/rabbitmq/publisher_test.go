package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/armelle-pouzioux/GLesCrocs/internal/interfaces"
)

type fakeChannel struct {
	declaredExchange string
	declaredKind     string
	published        []amqp.Publishing
	publishedTo      []string
	closed           bool
	publishErr       error
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declaredExchange = name
	f.declaredKind = kind
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (Queue, error) {
	return Queue{Name: "test-queue"}, nil
}

func (f *fakeChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	return nil
}

func (f *fakeChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.publishedTo = append(f.publishedTo, exchange)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func (f *fakeChannel) NotifyClose() <-chan *amqp.Error {
	return make(chan *amqp.Error)
}

type fakeConnection struct {
	channel    *fakeChannel
	channelErr error
}

func (f *fakeConnection) Channel() (Channel, error) {
	if f.channelErr != nil {
		return nil, f.channelErr
	}
	return f.channel, nil
}

func (f *fakeConnection) Close() error   { return nil }
func (f *fakeConnection) IsClosed() bool { return false }

func TestPublisherOrderReady(t *testing.T) {
	ch := &fakeChannel{}
	pub := NewPublisher(&fakeConnection{channel: ch})

	if err := pub.OrderReady(context.Background(), 7, 12); err != nil {
		t.Fatalf("OrderReady: %v", err)
	}

	if ch.declaredExchange != queueEventsExchange || ch.declaredKind != "fanout" {
		t.Errorf("declared %s/%s, want %s/fanout", ch.declaredExchange, ch.declaredKind, queueEventsExchange)
	}
	if len(ch.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(ch.published))
	}
	if ch.publishedTo[0] != queueEventsExchange {
		t.Errorf("published to %s", ch.publishedTo[0])
	}
	if !ch.closed {
		t.Error("channel left open")
	}

	var event interfaces.QueueEvent
	if err := json.Unmarshal(ch.published[0].Body, &event); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if event.Event != interfaces.EventOrderReady {
		t.Errorf("event = %s, want %s", event.Event, interfaces.EventOrderReady)
	}
	if event.OrderID != 7 || event.TicketNumber != 12 {
		t.Errorf("payload = %+v", event)
	}
	if event.Timestamp == 0 {
		t.Error("timestamp missing")
	}
}

func TestPublisherQueueChanged(t *testing.T) {
	ch := &fakeChannel{}
	pub := NewPublisher(&fakeConnection{channel: ch})

	if err := pub.QueueChanged(context.Background()); err != nil {
		t.Fatalf("QueueChanged: %v", err)
	}

	var event interfaces.QueueEvent
	if err := json.Unmarshal(ch.published[0].Body, &event); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if event.Event != interfaces.EventQueueChanged {
		t.Errorf("event = %s, want %s", event.Event, interfaces.EventQueueChanged)
	}
	if event.OrderID != 0 || event.TicketNumber != 0 {
		t.Errorf("payload carries order fields: %+v", event)
	}
}

func TestPublisherErrors(t *testing.T) {
	t.Run("channel open fails", func(t *testing.T) {
		pub := NewPublisher(&fakeConnection{channelErr: errors.New("conn gone")})
		if err := pub.QueueChanged(context.Background()); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("publish fails", func(t *testing.T) {
		ch := &fakeChannel{publishErr: errors.New("broker down")}
		pub := NewPublisher(&fakeConnection{channel: ch})
		if err := pub.QueueChanged(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		if !ch.closed {
			t.Error("channel left open after failure")
		}
	})
}
