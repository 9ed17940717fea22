package order

import (
	"context"

	"github.com/armelle-pouzioux/GLesCrocs/internal/adapter/logger"
	"github.com/armelle-pouzioux/GLesCrocs/internal/clock"
	"github.com/armelle-pouzioux/GLesCrocs/internal/domain"
	"github.com/armelle-pouzioux/GLesCrocs/internal/interfaces"
)

// Service owns the two write paths: order creation and status transitions.
type Service struct {
	menus  interfaces.MenuRepository
	orders interfaces.OrderRepository
	events interfaces.EventPublisher
	clock  clock.Clock
	logger logger.Logger
}

func NewService(menus interfaces.MenuRepository, orders interfaces.OrderRepository, events interfaces.EventPublisher, clk clock.Clock, lgr logger.Logger) *Service {
	return &Service{
		menus:  menus,
		orders: orders,
		events: events,
		clock:  clk,
		logger: lgr,
	}
}

// CreateOrder prices the cart against today's active menu, assigns the next
// ticket number and persists the order with its lines as one atomic unit.
// Locking the active menu row at the top of the transaction serializes
// same-day creations, so concurrent requests cannot draw the same ticket.
func (s *Service) CreateOrder(ctx context.Context, cmd interfaces.CreateOrderCommand) (*domain.Order, error) {
	if len(cmd.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	for _, line := range cmd.Lines {
		if line.MenuItemID <= 0 {
			return nil, domain.ErrInvalidCartLine
		}
	}

	now := s.clock.Now()
	serviceDate := domain.ServiceDateOf(now)

	var created *domain.Order
	err := s.orders.WithTx(ctx, func(ctx context.Context) error {
		menu, err := s.menus.ActiveMenuForUpdate(ctx, serviceDate)
		if err != nil {
			return err
		}

		cart, err := priceCart(ctx, s.menus, cmd.Lines)
		if err != nil {
			return err
		}

		ticket, err := s.orders.NextTicket(ctx, serviceDate)
		if err != nil {
			return err
		}

		created = &domain.Order{
			ServiceDate:      serviceDate,
			TicketNumber:     ticket,
			Status:           domain.StatusValidated,
			MenuID:           menu.ID,
			TotalCents:       cart.TotalCents,
			EstimatedPrepSec: cart.EstimatedPrepSec,
			Lines:            cart.Lines,
			ValidatedAt:      now,
		}

		return s.orders.CreateOrder(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("order_created", "Order created", "", map[string]interface{}{
		"order_id":     created.ID,
		"ticket":       created.TicketNumber,
		"service_date": created.ServiceDate,
	})

	s.notifyQueueChanged(ctx)

	return created, nil
}

// ApplyAction advances an order through the lifecycle. The read, the
// transition-table check and the write happen under a row lock, so of two
// concurrent requests one wins and the other observes the new state.
func (s *Service) ApplyAction(ctx context.Context, orderID int64, action domain.Action) (*domain.Order, error) {
	target, ok := action.Target()
	if !ok {
		return nil, domain.ErrInvalidAction
	}

	now := s.clock.Now()

	var updated *domain.Order
	err := s.orders.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.orders.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if err := current.TransitionTo(target, now); err != nil {
			return err
		}

		if err := s.orders.UpdateOrderStatus(ctx, current); err != nil {
			return err
		}

		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("status_changed", "Order status changed", "", map[string]interface{}{
		"order_id": updated.ID,
		"status":   string(updated.Status),
	})

	s.notifyQueueChanged(ctx)
	if updated.Status == domain.StatusReady {
		s.notifyOrderReady(ctx, updated)
	}

	return updated, nil
}

// Notifications are a latency optimization for observers; the queue state in
// the store is the source of truth. Delivery failures are logged and
// swallowed, never surfaced to the triggering request.

func (s *Service) notifyQueueChanged(ctx context.Context) {
	if err := s.events.QueueChanged(ctx); err != nil {
		s.logger.Error("notify_failed", "Failed to publish queue_changed", "", nil, err)
	}
}

func (s *Service) notifyOrderReady(ctx context.Context, o *domain.Order) {
	if err := s.events.OrderReady(ctx, o.ID, o.TicketNumber); err != nil {
		s.logger.Error("notify_failed", "Failed to publish order_ready", "", map[string]interface{}{
			"order_id": o.ID,
		}, err)
	}
}
