package task

import "testing"

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusNew, false},
		{StatusInProgress, false},
		{StatusDone, true},
		{StatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.expected {
				t.Errorf("Status.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		expected bool
	}{
		{"new", StatusNew, true},
		{"done", StatusDone, true},
		{"unknown", Status("archived"), false},
		{"empty", Status(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.expected {
				t.Errorf("Status.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from     Status
		to       Status
		expected bool
	}{
		{StatusNew, StatusInProgress, true},
		{StatusNew, StatusDone, true},
		{StatusNew, StatusCancelled, true},
		{StatusInProgress, StatusDone, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusNew, false},
		{StatusDone, StatusInProgress, false},
		{StatusDone, StatusCancelled, false},
		{StatusCancelled, StatusDone, false},
		{StatusCancelled, StatusNew, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.expected {
				t.Errorf("CanTransition(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestAction_Target(t *testing.T) {
	tests := []struct {
		action Action
		target Status
	}{
		{ActionTake, StatusInProgress},
		{ActionFinish, StatusDone},
		{ActionCancel, StatusCancelled},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			if got := tt.action.Target(); got != tt.target {
				t.Errorf("Action.Target() = %v, want %v", got, tt.target)
			}
			if !tt.action.IsValid() {
				t.Errorf("Action.IsValid() = false for %v", tt.action)
			}
		})
	}

	if Action("reopen").IsValid() {
		t.Error("IsValid() should be false for unknown action")
	}
}
