package interfaces

import (
	"context"

	"github.com/armelle-pouzioux/GLesCrocs/internal/domain"
)

// CartLine is one requested line of an incoming cart.
type CartLine struct {
	MenuItemID int64
	Quantity   int
}

// CreateOrderCommand is the input to order creation.
type CreateOrderCommand struct {
	Lines []CartLine
}

// OrderService owns the write paths: order creation and status transitions.
type OrderService interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
	ApplyAction(ctx context.Context, orderID int64, action domain.Action) (*domain.Order, error)
}

// QueueService owns the read paths consumed by the queue display.
type QueueService interface {
	// ActiveQueue returns today's service date and its active orders.
	ActiveQueue(ctx context.Context) (string, []*domain.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	GetStatus(ctx context.Context, orderID int64) (domain.Status, error)
}
