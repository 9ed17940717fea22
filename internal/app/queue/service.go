package queue

import (
	"context"

	"github.com/armelle-pouzioux/GLesCrocs/internal/clock"
	"github.com/armelle-pouzioux/GLesCrocs/internal/domain"
	"github.com/armelle-pouzioux/GLesCrocs/internal/interfaces"
)

// Service owns the read paths behind the queue display. Reads tolerate a
// little staleness; observers refresh on push events anyway.
type Service struct {
	orders interfaces.OrderRepository
	clock  clock.Clock
}

func NewService(orders interfaces.OrderRepository, clk clock.Clock) *Service {
	return &Service{orders: orders, clock: clk}
}

// ActiveQueue returns today's service date and its orders that are not yet
// COMPLETED or CANCELLED, ascending by ticket number.
func (s *Service) ActiveQueue(ctx context.Context) (string, []*domain.Order, error) {
	serviceDate := domain.ServiceDateOf(s.clock.Now())
	orders, err := s.orders.ActiveQueue(ctx, serviceDate)
	if err != nil {
		return "", nil, err
	}
	return serviceDate, orders, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	return s.orders.GetOrder(ctx, orderID)
}

func (s *Service) GetStatus(ctx context.Context, orderID int64) (domain.Status, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	return order.Status, nil
}
