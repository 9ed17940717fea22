package domain

import "time"

// Order is a customer order placed against a day's menu. The order and its
// lines are immutable after creation except for the status fields.
type Order struct {
	ID               int64
	ServiceDate      string
	TicketNumber     int
	Status           Status
	MenuID           int64
	TotalCents       int64
	EstimatedPrepSec int
	Lines            []OrderLine

	ValidatedAt time.Time
	PreparingAt *time.Time
	PaidAt      *time.Time
	ReadyAt     *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
}

// OrderLine is one cart line with the item's name and unit price snapshotted
// at order time, so later menu edits never rewrite history.
type OrderLine struct {
	ID             int64
	OrderID        int64
	MenuItemID     int64
	NameSnapshot   string
	Quantity       int
	UnitPriceCents int64
}

// TransitionTo moves the order to next, stamping the matching timestamp.
// Each timestamp is written at most once: the transition table never allows
// a move back into a status already left.
func (o *Order) TransitionTo(next Status, now time.Time) error {
	if !o.Status.CanTransitionTo(next) {
		return ErrIllegalTransition
	}

	o.Status = next

	switch next {
	case StatusPreparing:
		o.PreparingAt = &now
	case StatusPaid:
		o.PaidAt = &now
	case StatusReady:
		o.ReadyAt = &now
	case StatusCompleted:
		o.CompletedAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
	}

	return nil
}

// Active reports whether the order still belongs on the queue display.
func (o *Order) Active() bool {
	return o.Status != StatusCompleted && o.Status != StatusCancelled
}
