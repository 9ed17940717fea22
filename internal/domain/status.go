package domain

// Status is the lifecycle state of an order.
type Status string

const (
	StatusValidated Status = "VALIDATED"
	StatusPreparing Status = "PREPARING"
	StatusPaid      Status = "PAID"
	StatusReady     Status = "READY"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Action is a status-change token accepted at the boundary.
type Action string

const (
	ActionPreparing Action = "preparing"
	ActionPaid      Action = "paid"
	ActionReady     Action = "ready"
	ActionCompleted Action = "completed"
	ActionCancel    Action = "cancel"
)

var actionTargets = map[Action]Status{
	ActionPreparing: StatusPreparing,
	ActionPaid:      StatusPaid,
	ActionReady:     StatusReady,
	ActionCompleted: StatusCompleted,
	ActionCancel:    StatusCancelled,
}

// Target returns the status an action requests, and whether the action token
// is known at all.
func (a Action) Target() (Status, bool) {
	s, ok := actionTargets[a]
	return s, ok
}

// transitions is the closed set of legal status moves. COMPLETED and
// CANCELLED are terminal.
var transitions = map[Status][]Status{
	StatusValidated: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusReady, StatusCancelled},
	StatusReady:     {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransitionTo checks the transition table for a single legal move.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions exist from s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}
