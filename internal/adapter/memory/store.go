package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/armelle-pouzioux/GLesCrocs/internal/domain"
)

type txKey struct{}

// Store is an in-memory implementation of the menu and order repositories,
// used by tests and local development. A single mutex held for the whole of
// WithTx stands in for the database's transaction isolation: writers
// serialize, so ticket assignment and status transitions stay race-free.
//
// Every mutating operation is a single map write, so an aborted transaction
// leaves no partial state behind.
type Store struct {
	mu sync.Mutex

	menus  map[int64]*domain.Menu
	items  map[int64]*domain.MenuItem
	orders map[int64]*domain.Order

	nextMenuID  int64
	nextItemID  int64
	nextOrderID int64
	nextLineID  int64
}

func NewStore() *Store {
	return &Store{
		menus:  make(map[int64]*domain.Menu),
		items:  make(map[int64]*domain.MenuItem),
		orders: make(map[int64]*domain.Order),
	}
}

// WithTx serializes the whole unit under the store mutex. Nested calls join
// the outer unit.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, true))
}

func (s *Store) locked(ctx context.Context, fn func() error) error {
	if ctx.Value(txKey{}) != nil {
		return fn()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// AddMenu seeds a menu and returns it (test and demo helper).
func (s *Store) AddMenu(serviceDate string, active bool) *domain.Menu {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextMenuID++
	menu := &domain.Menu{ID: s.nextMenuID, ServiceDate: serviceDate, Active: active}
	s.menus[menu.ID] = menu
	return menu
}

// AddItem seeds a menu item and returns it (test and demo helper).
func (s *Store) AddItem(menuID int64, name string, priceCents int64, prepTimeSec int, available bool) *domain.MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextItemID++
	item := &domain.MenuItem{
		ID:          s.nextItemID,
		MenuID:      menuID,
		Name:        name,
		PriceCents:  priceCents,
		PrepTimeSec: prepTimeSec,
		Available:   available,
	}
	s.items[item.ID] = item
	return item
}

// SetItem overwrites a seeded item in place, emulating a later menu edit.
func (s *Store) SetItem(item domain.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := item
	s.items[item.ID] = &cp
}

func (s *Store) ActiveMenu(ctx context.Context, serviceDate string) (*domain.Menu, error) {
	var found *domain.Menu
	err := s.locked(ctx, func() error {
		for _, m := range s.menus {
			if m.ServiceDate == serviceDate && m.Active {
				cp := *m
				found = &cp
				return nil
			}
		}
		return domain.ErrMenuNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// ActiveMenuForUpdate is plain ActiveMenu here: WithTx already holds the
// store mutex, which is a stronger lock than any single row's.
func (s *Store) ActiveMenuForUpdate(ctx context.Context, serviceDate string) (*domain.Menu, error) {
	return s.ActiveMenu(ctx, serviceDate)
}

func (s *Store) ResolveItem(ctx context.Context, menuItemID int64) (*domain.MenuItem, error) {
	var found *domain.MenuItem
	err := s.locked(ctx, func() error {
		item, ok := s.items[menuItemID]
		if !ok || !item.Available {
			return domain.ErrItemNotFound
		}
		cp := *item
		found = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *Store) NextTicket(ctx context.Context, serviceDate string) (int, error) {
	max := 0
	err := s.locked(ctx, func() error {
		for _, o := range s.orders {
			if o.ServiceDate == serviceDate && o.TicketNumber > max {
				max = o.TicketNumber
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (s *Store) CreateOrder(ctx context.Context, order *domain.Order) error {
	return s.locked(ctx, func() error {
		s.nextOrderID++
		order.ID = s.nextOrderID
		for i := range order.Lines {
			s.nextLineID++
			order.Lines[i].ID = s.nextLineID
			order.Lines[i].OrderID = order.ID
		}
		cp := cloneOrder(order)
		s.orders[order.ID] = cp
		return nil
	})
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var found *domain.Order
	err := s.locked(ctx, func() error {
		o, ok := s.orders[id]
		if !ok {
			return domain.ErrOrderNotFound
		}
		found = cloneOrder(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *Store) GetOrderForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return s.GetOrder(ctx, id)
}

func (s *Store) UpdateOrderStatus(ctx context.Context, order *domain.Order) error {
	return s.locked(ctx, func() error {
		stored, ok := s.orders[order.ID]
		if !ok {
			return domain.ErrOrderNotFound
		}
		stored.Status = order.Status
		stored.PreparingAt = order.PreparingAt
		stored.PaidAt = order.PaidAt
		stored.ReadyAt = order.ReadyAt
		stored.CompletedAt = order.CompletedAt
		stored.CancelledAt = order.CancelledAt
		return nil
	})
}

func (s *Store) ActiveQueue(ctx context.Context, serviceDate string) ([]*domain.Order, error) {
	var result []*domain.Order
	err := s.locked(ctx, func() error {
		for _, o := range s.orders {
			if o.ServiceDate == serviceDate && o.Active() {
				result = append(result, cloneOrder(o))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TicketNumber < result[j].TicketNumber
	})
	return result, nil
}

func cloneOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Lines = make([]domain.OrderLine, len(o.Lines))
	copy(cp.Lines, o.Lines)
	return &cp
}
