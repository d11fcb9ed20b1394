package task

import (
	"testing"
	"time"
)

func carpentersTask(status Status) *Task {
	return &Task{
		ID:         1700000000000,
		Text:       "fix the workshop door",
		Status:     status,
		Department: "carpenters",
		AuthorID:   "ou_author",
		AuthorName: "A. Author",
		CreatedAt:  time.Now(),
	}
}

func hasAction(actions []Action, a Action) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}

func TestLegalActions_OutsiderOnNewTask(t *testing.T) {
	// Not a member, not privileged, not the author: finish only.
	tk := carpentersTask(StatusNew)
	got := LegalActions(tk, Viewer{ID: "ou_stranger"})

	if len(got) != 1 || got[0] != ActionFinish {
		t.Errorf("LegalActions() = %v, want [finish]", got)
	}
}

func TestLegalActions_AuthorOnNewTask(t *testing.T) {
	// Author outside the department: finish and cancel, no take.
	tk := carpentersTask(StatusNew)
	got := LegalActions(tk, Viewer{ID: "ou_author"})

	if hasAction(got, ActionTake) {
		t.Error("author outside department must not take")
	}
	if !hasAction(got, ActionFinish) || !hasAction(got, ActionCancel) {
		t.Errorf("LegalActions() = %v, want finish and cancel", got)
	}
}

func TestLegalActions_DepartmentMember(t *testing.T) {
	tk := carpentersTask(StatusNew)
	v := Viewer{ID: "ou_member", Departments: map[string]bool{"carpenters": true}}

	got := LegalActions(tk, v)
	if !hasAction(got, ActionTake) {
		t.Errorf("member of task department should be able to take, got %v", got)
	}
	if hasAction(got, ActionCancel) {
		t.Errorf("non-author member must not cancel, got %v", got)
	}
}

func TestLegalActions_PrivilegedOperator(t *testing.T) {
	tk := carpentersTask(StatusNew)
	got := LegalActions(tk, Viewer{ID: "ou_director", Privileged: true})

	for _, want := range []Action{ActionTake, ActionFinish, ActionCancel} {
		if !hasAction(got, want) {
			t.Errorf("privileged operator missing %v in %v", want, got)
		}
	}
}

func TestLegalActions_InProgress(t *testing.T) {
	tk := carpentersTask(StatusInProgress)
	v := Viewer{ID: "ou_member", Departments: map[string]bool{"carpenters": true}}

	got := LegalActions(tk, v)
	if hasAction(got, ActionTake) {
		t.Error("take is only legal on new tasks")
	}
	if !hasAction(got, ActionFinish) {
		t.Error("finish must stay legal while in progress")
	}
}

func TestLegalActions_TerminalPermitsNothing(t *testing.T) {
	for _, status := range []Status{StatusDone, StatusCancelled} {
		tk := carpentersTask(status)
		if got := LegalActions(tk, Viewer{ID: "ou_director", Privileged: true}); len(got) != 0 {
			t.Errorf("LegalActions(%v) = %v, want none even for the operator", status, got)
		}
	}
}

func TestDisplayActions(t *testing.T) {
	tests := []struct {
		status Status
		want   []Action
	}{
		{StatusNew, []Action{ActionTake, ActionFinish, ActionCancel}},
		{StatusInProgress, []Action{ActionFinish, ActionCancel}},
		{StatusDone, nil},
		{StatusCancelled, nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got := DisplayActions(carpentersTask(tt.status))
			if len(got) != len(tt.want) {
				t.Fatalf("DisplayActions() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("DisplayActions() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}
