package tracker

import "context"

// Comment is a note attached to an external entry
type Comment struct {
	ID   string
	Text string
}

// Entry is one record in the external task-tracking service
type Entry struct {
	ID         string
	Text       string
	IsComplete bool
	Comments   []Comment
}

// Client is the external task-tracking service consumed by the action
// processor (outward pushes) and the reconciler (inward pulls). Every call
// carries a short fixed deadline; callers treat failures as best-effort
// and never roll back local state over them.
type Client interface {
	// ListAll pulls the full authoritative external list
	ListAll(ctx context.Context) ([]Entry, error)

	// Create mirrors a task outward and returns the external id
	Create(ctx context.Context, text, note string) (string, error)

	// MarkComplete closes the external entry
	MarkComplete(ctx context.Context, id string) error

	// Delete removes the external entry
	Delete(ctx context.Context, id string) error

	// AddComment attaches a note to the external entry
	AddComment(ctx context.Context, id, text string) (string, error)
}
