package interfaces

import (
	"context"

	"github.com/armelle-pouzioux/GLesCrocs/internal/domain"
)

// MenuRepository is the read-only menu catalog.
type MenuRepository interface {
	// ActiveMenu resolves the single active menu for a service date, or
	// domain.ErrMenuNotFound.
	ActiveMenu(ctx context.Context, serviceDate string) (*domain.Menu, error)

	// ActiveMenuForUpdate is ActiveMenu with the row locked for the
	// duration of the surrounding transaction. Locking the menu row
	// serializes same-day order creation, which keeps ticket assignment
	// race-free.
	ActiveMenuForUpdate(ctx context.Context, serviceDate string) (*domain.Menu, error)

	// ResolveItem returns the item, or domain.ErrItemNotFound when it does
	// not exist or is marked unavailable.
	ResolveItem(ctx context.Context, menuItemID int64) (*domain.MenuItem, error)
}

// OrderRepository is the durable order store.
type OrderRepository interface {
	// WithTx runs fn inside one atomic unit. Either every write made by fn
	// commits, or none do. Nested calls join the outer transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// NextTicket computes max(ticket numbers for serviceDate)+1, starting
	// at 1. Only meaningful inside the transaction of the insert it serves.
	NextTicket(ctx context.Context, serviceDate string) (int, error)

	// CreateOrder persists the order and its lines, filling in their IDs.
	CreateOrder(ctx context.Context, order *domain.Order) error

	GetOrder(ctx context.Context, id int64) (*domain.Order, error)

	// GetOrderForUpdate locks the order row so concurrent transitions on
	// the same order serialize.
	GetOrderForUpdate(ctx context.Context, id int64) (*domain.Order, error)

	// UpdateOrderStatus writes the status and transition timestamps back.
	// Everything else on the order is immutable.
	UpdateOrderStatus(ctx context.Context, order *domain.Order) error

	// ActiveQueue lists orders for the date that are not COMPLETED or
	// CANCELLED, ascending by ticket number.
	ActiveQueue(ctx context.Context, serviceDate string) ([]*domain.Order, error)
}
