package task

// Status represents a task's position in its lifecycle
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

var validStatuses = map[Status]bool{
	StatusNew:        true,
	StatusInProgress: true,
	StatusDone:       true,
	StatusCancelled:  true,
}

var terminalStatuses = map[Status]bool{
	StatusDone:      true,
	StatusCancelled: true,
}

// allowedTransitions is the full lifecycle graph. Terminal statuses have
// no outgoing edges.
var allowedTransitions = map[Status][]Status{
	StatusNew:        {StatusInProgress, StatusDone, StatusCancelled},
	StatusInProgress: {StatusDone, StatusCancelled},
}

// IsTerminal returns true if no further transitions are permitted from s
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsValid returns true if s is a known lifecycle status
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// CanTransition returns true if the lifecycle permits moving from s to next
func (s Status) CanTransition(next Status) bool {
	for _, t := range allowedTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}
