package domain

import "testing"

func TestStatusCanTransitionTo(t *testing.T) {
	allStatuses := []Status{
		StatusValidated, StatusPreparing, StatusPaid,
		StatusReady, StatusCompleted, StatusCancelled,
	}

	allowed := map[Status][]Status{
		StatusValidated: {StatusPreparing, StatusCancelled},
		StatusPreparing: {StatusPaid, StatusCancelled},
		StatusPaid:      {StatusReady, StatusCancelled},
		StatusReady:     {StatusCompleted},
		StatusCompleted: {},
		StatusCancelled: {},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusValidated: false,
		StatusPreparing: false,
		StatusPaid:      false,
		StatusReady:     false,
		StatusCompleted: true,
		StatusCancelled: true,
	}

	for status, want := range terminal {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}

func TestActionTarget(t *testing.T) {
	tests := []struct {
		action Action
		want   Status
		known  bool
	}{
		{ActionPreparing, StatusPreparing, true},
		{ActionPaid, StatusPaid, true},
		{ActionReady, StatusReady, true},
		{ActionCompleted, StatusCompleted, true},
		{ActionCancel, StatusCancelled, true},
		{Action("refund"), "", false},
		{Action(""), "", false},
	}

	for _, tt := range tests {
		got, ok := tt.action.Target()
		if ok != tt.known {
			t.Errorf("Target(%q): known = %v, want %v", tt.action, ok, tt.known)
		}
		if ok && got != tt.want {
			t.Errorf("Target(%q) = %s, want %s", tt.action, got, tt.want)
		}
	}
}
