package task

// Action is a viewer-initiated lifecycle transition request
type Action string

const (
	ActionTake   Action = "take"
	ActionFinish Action = "finish"
	ActionCancel Action = "cancel"
)

var actionTargets = map[Action]Status{
	ActionTake:   StatusInProgress,
	ActionFinish: StatusDone,
	ActionCancel: StatusCancelled,
}

// IsValid returns true if a is a known action
func (a Action) IsValid() bool {
	_, ok := actionTargets[a]
	return ok
}

// Target returns the status the action transitions a task into
func (a Action) Target() Status {
	return actionTargets[a]
}

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}
