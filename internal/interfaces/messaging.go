package interfaces

import "context"

// Event names published on the queue_events exchange. Consumers treat both
// as a hint to re-fetch state, never as the state itself.
const (
	EventQueueChanged = "queue_changed"
	EventOrderReady   = "order_ready"
)

// QueueEvent is the wire shape of a push notification.
type QueueEvent struct {
	Event        string `json:"event"`
	OrderID      int64  `json:"order_id,omitempty"`
	TicketNumber int    `json:"ticket_number,omitempty"`
	Timestamp    int64  `json:"ts"`
}

// EventPublisher is the fire-and-forget notification hook. Callers swallow
// errors: delivery is best-effort, at most once.
type EventPublisher interface {
	QueueChanged(ctx context.Context) error
	OrderReady(ctx context.Context, orderID int64, ticketNumber int) error
}

// EventHandler processes one raw event body.
type EventHandler func(ctx context.Context, body []byte) error

// EventConsumer feeds queue events to a handler until ctx is cancelled.
type EventConsumer interface {
	ConsumeEvents(ctx context.Context, handler EventHandler) error
}
