package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/armelle-pouzioux/GLesCrocs/internal/adapter/logger"
	"github.com/armelle-pouzioux/GLesCrocs/internal/adapter/memory"
	"github.com/armelle-pouzioux/GLesCrocs/internal/clock"
	"github.com/armelle-pouzioux/GLesCrocs/internal/domain"
	"github.com/armelle-pouzioux/GLesCrocs/internal/interfaces"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type recordedEvent struct {
	name         string
	orderID      int64
	ticketNumber int
}

// recordingPublisher captures notifications; fail makes every publish error
// to prove failures are swallowed.
type recordingPublisher struct {
	events []recordedEvent
	fail   bool
}

func (p *recordingPublisher) QueueChanged(ctx context.Context) error {
	p.events = append(p.events, recordedEvent{name: interfaces.EventQueueChanged})
	if p.fail {
		return errors.New("broker down")
	}
	return nil
}

func (p *recordingPublisher) OrderReady(ctx context.Context, orderID int64, ticketNumber int) error {
	p.events = append(p.events, recordedEvent{name: interfaces.EventOrderReady, orderID: orderID, ticketNumber: ticketNumber})
	if p.fail {
		return errors.New("broker down")
	}
	return nil
}

func (p *recordingPublisher) byName(name string) []recordedEvent {
	var out []recordedEvent
	for _, e := range p.events {
		if e.name == name {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	store     *memory.Store
	publisher *recordingPublisher
	service   *Service
	itemA     *domain.MenuItem
	itemB     *domain.MenuItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	menu := store.AddMenu(domain.ServiceDateOf(testNow), true)
	itemA := store.AddItem(menu.ID, "Croque Monsieur", 500, 120, true)
	itemB := store.AddItem(menu.ID, "Salade du Chef", 650, 60, true)

	publisher := &recordingPublisher{}
	service := NewService(store, store, publisher, clock.NewFixed(testNow), logger.NewNoop())

	return &fixture{store: store, publisher: publisher, service: service, itemA: itemA, itemB: itemB}
}

func TestServiceCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("first order of the day", func(t *testing.T) {
		f := newFixture(t)

		created, err := f.service.CreateOrder(ctx, interfaces.CreateOrderCommand{
			Lines: []interfaces.CartLine{{MenuItemID: f.itemA.ID, Quantity: 2}},
		})
		if err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}

		if created.TicketNumber != 1 {
			t.Errorf("ticket = %d, want 1", created.TicketNumber)
		}
		if created.Status != domain.StatusValidated {
			t.Errorf("status = %s, want VALIDATED", created.Status)
		}
		if created.TotalCents != 1000 {
			t.Errorf("total = %d, want 1000", created.TotalCents)
		}
		if created.EstimatedPrepSec != 240 {
			t.Errorf("estimated prep = %d, want 240", created.EstimatedPrepSec)
		}
		if !created.ValidatedAt.Equal(testNow) {
			t.Errorf("validated_at = %v, want %v", created.ValidatedAt, testNow)
		}
		if len(created.Lines) != 1 {
			t.Fatalf("lines = %d, want 1", len(created.Lines))
		}
		line := created.Lines[0]
		if line.NameSnapshot != "Croque Monsieur" || line.UnitPriceCents != 500 || line.Quantity != 2 {
			t.Errorf("line snapshot = %+v", line)
		}
	})

	t.Run("tickets are sequential", func(t *testing.T) {
		f := newFixture(t)

		for want := 1; want <= 3; want++ {
			created, err := f.service.CreateOrder(ctx, interfaces.CreateOrderCommand{
				Lines: []interfaces.CartLine{{MenuItemID: f.itemA.ID, Quantity: 1}},
			})
			if err != nil {
				t.Fatalf("CreateOrder #%d: %v", want, err)
			}
			if created.TicketNumber != want {
				t.Errorf("ticket = %d, want %d", created.TicketNumber, want)
			}
		}
	})

	t.Run("quantity below 1 is floored to 1", func(t *testing.T) {
		f := newFixture(t)

		created, err := f.service.CreateOrder(ctx, interfaces.CreateOrderCommand{
			Lines: []interfaces.CartLine{
				{MenuItemID: f.itemA.ID, Quantity: 0},
				{MenuItemID: f.itemB.ID, Quantity: -3},
			},
		})
		if err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}
		for _, line := range created.Lines {
			if line.Quantity != 1 {
				t.Errorf("line %d quantity = %d, want 1", line.MenuItemID, line.Quantity)
			}
		}
		if created.TotalCents != 500+650 {
			t.Errorf("total = %d, want %d", created.TotalCents, 500+650)
		}
	})

	t.Run("empty cart", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.CreateOrder(ctx, interfaces.CreateOrderCommand{})
		if !errors.Is(err, domain.ErrEmptyCart) {
			t.Fatalf("err = %v, want ErrEmptyCart", err)
		}
	})

	t.Run("cart line without item id", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.CreateOrder(ctx, interfaces.CreateOrderCommand{
			Lines: []interfaces.CartLine{{MenuItemID: 0, Quantity: 1}},
		})
		if !errors.Is(err, domain.ErrInvalidCartLine) {
			t.Fatalf("err = %v, want ErrInvalidCartLine", err)
		}
	})

	t.Run("unknown item resolves nothing and persists nothing", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.CreateOrder(ctx, interfaces.CreateOrderCommand{
			Lines: []interfaces.CartLine{
				{MenuItemID: f.itemA.ID, Quantity: 1},
				{MenuItemID: 9999, Quantity: 1},
			},
		})
		if !errors.Is(err, domain.ErrItemNotFound) {
			t.Fatalf("err = %v, want ErrItemNotFound", err)
		}

		orders, err := f.store.ActiveQueue(ctx, domain.ServiceDateOf(testNow))
		if err != nil {
			t.Fatalf("ActiveQueue: %v", err)
		}
		if len(orders) != 0 {
			t.Fatalf("queue has %d orders after failed create, want 0", len(orders))
		}
	})

	t.Run("unavailable item", func(t *testing.T) {
		f := newFixture(t)
		unavailable := *f.itemA
		unavailable.Available = false
		f.store.SetItem(unavailable)

		_, err := f.service.CreateOrder(ctx, interfaces.CreateOrderCommand{
			Lines: []interfaces.CartLine{{MenuItemID: f.itemA.ID, Quantity: 1}},
		})
		if !errors.Is(err, domain.ErrItemNotFound) {
			t.Fatalf("err = %v, want ErrItemNotFound", err)
		}
	})

	t.Run("no active menu today", func(t *testing.T) {
		store := memory.NewStore()
		publisher := &recordingPublisher{}
		service := NewService(store, store, publisher, clock.NewFixed(testNow), logger.NewNoop())

		_, err := service.CreateOrder(ctx, interfaces.CreateOrderCommand{
			Lines: []interfaces.CartLine{{MenuItemID: 1, Quantity: 1}},
		})
		if !errors.Is(err, domain.ErrMenuNotFound) {
			t.Fatalf("err = %v, want ErrMenuNotFound", err)
		}
	})

	t.Run("snapshots survive later menu edits", func(t *testing.T) {
		f := newFixture(t)

		created, err := f.service.CreateOrder(ctx, interfaces.CreateOrderCommand{
			Lines: []interfaces.CartLine{{MenuItemID: f.itemA.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}

		edited := *f.itemA
		edited.Name = "Croque Madame"
		edited.PriceCents = 950
		f.store.SetItem(edited)

		reloaded, err := f.store.GetOrder(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetOrder: %v", err)
		}
		line := reloaded.Lines[0]
		if line.NameSnapshot != "Croque Monsieur" || line.UnitPriceCents != 500 {
			t.Errorf("snapshot rewritten by menu edit: %+v", line)
		}
	})

	t.Run("publishes queue_changed", func(t *testing.T) {
		f := newFixture(t)

		if _, err := f.service.CreateOrder(ctx, interfaces.CreateOrderCommand{
			Lines: []interfaces.CartLine{{MenuItemID: f.itemA.ID, Quantity: 1}},
		}); err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}
		if got := len(f.publisher.byName(interfaces.EventQueueChanged)); got != 1 {
			t.Errorf("queue_changed events = %d, want 1", got)
		}
	})

	t.Run("publisher failure is swallowed", func(t *testing.T) {
		f := newFixture(t)
		f.publisher.fail = true

		created, err := f.service.CreateOrder(ctx, interfaces.CreateOrderCommand{
			Lines: []interfaces.CartLine{{MenuItemID: f.itemA.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("CreateOrder failed because of the notifier: %v", err)
		}
		if created.TicketNumber != 1 {
			t.Errorf("ticket = %d, want 1", created.TicketNumber)
		}
	})
}

func TestServiceApplyAction(t *testing.T) {
	ctx := context.Background()

	create := func(t *testing.T, f *fixture) *domain.Order {
		t.Helper()
		created, err := f.service.CreateOrder(ctx, interfaces.CreateOrderCommand{
			Lines: []interfaces.CartLine{{MenuItemID: f.itemA.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}
		return created
	}

	t.Run("full lifecycle walk", func(t *testing.T) {
		f := newFixture(t)
		created := create(t, f)

		steps := []struct {
			action domain.Action
			status domain.Status
		}{
			{domain.ActionPreparing, domain.StatusPreparing},
			{domain.ActionPaid, domain.StatusPaid},
			{domain.ActionReady, domain.StatusReady},
			{domain.ActionCompleted, domain.StatusCompleted},
		}

		for _, step := range steps {
			updated, err := f.service.ApplyAction(ctx, created.ID, step.action)
			if err != nil {
				t.Fatalf("action %s: %v", step.action, err)
			}
			if updated.Status != step.status {
				t.Fatalf("status = %s, want %s", updated.Status, step.status)
			}
		}

		final, err := f.store.GetOrder(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetOrder: %v", err)
		}
		for name, ts := range map[string]*time.Time{
			"preparing_at": final.PreparingAt,
			"paid_at":      final.PaidAt,
			"ready_at":     final.ReadyAt,
			"completed_at": final.CompletedAt,
		} {
			if ts == nil {
				t.Errorf("%s not set after full walk", name)
			}
		}
		if final.CancelledAt != nil {
			t.Error("cancelled_at set on a completed order")
		}

		if _, err := f.service.ApplyAction(ctx, created.ID, domain.ActionCancel); !errors.Is(err, domain.ErrIllegalTransition) {
			t.Fatalf("cancel after completed: err = %v, want ErrIllegalTransition", err)
		}
	})

	t.Run("ready from VALIDATED is rejected", func(t *testing.T) {
		f := newFixture(t)
		created := create(t, f)

		_, err := f.service.ApplyAction(ctx, created.ID, domain.ActionReady)
		if !errors.Is(err, domain.ErrIllegalTransition) {
			t.Fatalf("err = %v, want ErrIllegalTransition", err)
		}

		reloaded, err := f.store.GetOrder(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetOrder: %v", err)
		}
		if reloaded.Status != domain.StatusValidated {
			t.Errorf("status = %s, want VALIDATED", reloaded.Status)
		}
		if reloaded.ReadyAt != nil {
			t.Error("ready_at set by a rejected transition")
		}
	})

	t.Run("unknown action", func(t *testing.T) {
		f := newFixture(t)
		created := create(t, f)

		_, err := f.service.ApplyAction(ctx, created.ID, domain.Action("refund"))
		if !errors.Is(err, domain.ErrInvalidAction) {
			t.Fatalf("err = %v, want ErrInvalidAction", err)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.ApplyAction(ctx, 42, domain.ActionPreparing)
		if !errors.Is(err, domain.ErrOrderNotFound) {
			t.Fatalf("err = %v, want ErrOrderNotFound", err)
		}
	})

	t.Run("order_ready fires only on READY", func(t *testing.T) {
		f := newFixture(t)
		created := create(t, f)

		for _, action := range []domain.Action{domain.ActionPreparing, domain.ActionPaid} {
			if _, err := f.service.ApplyAction(ctx, created.ID, action); err != nil {
				t.Fatalf("action %s: %v", action, err)
			}
		}
		if got := len(f.publisher.byName(interfaces.EventOrderReady)); got != 0 {
			t.Fatalf("order_ready before READY: %d events", got)
		}

		if _, err := f.service.ApplyAction(ctx, created.ID, domain.ActionReady); err != nil {
			t.Fatalf("action ready: %v", err)
		}

		ready := f.publisher.byName(interfaces.EventOrderReady)
		if len(ready) != 1 {
			t.Fatalf("order_ready events = %d, want 1", len(ready))
		}
		if ready[0].orderID != created.ID || ready[0].ticketNumber != created.TicketNumber {
			t.Errorf("order_ready payload = %+v", ready[0])
		}
	})
}
