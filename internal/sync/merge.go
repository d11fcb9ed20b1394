package sync

import (
	"hash/fnv"
	"time"

	"github.com/tasklinehq/taskline/internal/domain/task"
	"github.com/tasklinehq/taskline/internal/tracker"
)

// History verbs recorded by reconciliation rather than a person
const (
	historyCancelByTracker   = "cancel_by_tracker"
	historyImportFromTracker = "imported_from_tracker"
	historyCompleteByTracker = "complete_by_tracker"
	historyStartByTracker    = "start_by_tracker"
	reconcilerActor          = "tracker"
)

// Change is one task the merge decided to update or create. Only changed
// tasks appear in the result, so applying a merge twice against the same
// external snapshot is a no-op the second time.
type Change struct {
	Task          *task.Task
	StatusChanged bool
	CommentsAdded int
	Created       bool
}

// Merge reconciles the local task set against an external tracker
// snapshot and returns the tasks that need persisting. Local terminal
// statuses are never overwritten; comments still flow in for them.
//
// Rules, applied per mirrored task:
//   - gone upstream, local not terminal: cancel locally
//   - completed upstream, local not terminal: mark done locally
//   - open upstream, local still new: mark in progress locally
//   - otherwise the local status stands
//
// External entries no local task references are synthesized as new tasks
// assigned to the operator, so work logged directly in the tracker still
// shows up here.
func Merge(local []*task.Task, external []tracker.Entry, operatorID, operatorName string, now time.Time) []Change {
	byExternalID := make(map[string]tracker.Entry, len(external))
	for _, e := range external {
		byExternalID[e.ID] = e
	}

	claimed := make(map[string]bool, len(local))
	var changes []Change

	for _, t := range local {
		if t.ExternalRef == "" {
			continue
		}
		claimed[t.ExternalRef] = true

		entry, present := byExternalID[t.ExternalRef]

		c := Change{Task: t.Clone()}

		if present {
			c.CommentsAdded = c.Task.MergeExternalComments(toDomainComments(entry.Comments))
		}

		if !c.Task.Status.IsTerminal() {
			switch {
			case !present:
				c.Task.Status = task.StatusCancelled
				c.Task.AppendHistory(historyCancelByTracker, reconcilerActor, now)
				c.StatusChanged = true
			case entry.IsComplete:
				c.Task.Status = task.StatusDone
				c.Task.AppendHistory(historyCompleteByTracker, reconcilerActor, now)
				c.StatusChanged = true
			case c.Task.Status == task.StatusNew:
				// Open upstream means the mirror is being worked; a task
				// still sitting at new would otherwise keep a stale take
				// affordance on its surfaces.
				c.Task.Status = task.StatusInProgress
				c.Task.AppendHistory(historyStartByTracker, reconcilerActor, now)
				c.StatusChanged = true
			}
		}

		if c.StatusChanged || c.CommentsAdded > 0 {
			changes = append(changes, c)
		}
	}

	for _, e := range external {
		if claimed[e.ID] {
			continue
		}
		t := synthesize(e, operatorID, operatorName, now)
		changes = append(changes, Change{Task: t, Created: true, CommentsAdded: len(t.ExternalComments)})
	}

	return changes
}

// synthesize builds a local twin for an external entry nothing references.
// The id is a stable hash of the external id so repeated cycles converge
// on the same task instead of duplicating it.
func synthesize(e tracker.Entry, operatorID, operatorName string, now time.Time) *task.Task {
	status := task.StatusInProgress
	if e.IsComplete {
		status = task.StatusDone
	}

	t := &task.Task{
		ID:           syntheticID(e.ID),
		Text:         e.Text,
		Status:       status,
		AssigneeID:   operatorID,
		AssigneeName: operatorName,
		AuthorID:     operatorID,
		AuthorName:   operatorName,
		CreatedAt:    now,
		ExternalRef:  e.ID,
	}
	t.AppendHistory(historyImportFromTracker, reconcilerActor, now)
	t.MergeExternalComments(toDomainComments(e.Comments))
	return t
}

// syntheticID maps an external id into the local id space. FNV-1a over
// the id bytes, folded to a positive int64.
func syntheticID(externalID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(externalID))
	return int64(h.Sum64() & (1<<63 - 1))
}

func toDomainComments(comments []tracker.Comment) []task.Comment {
	if len(comments) == 0 {
		return nil
	}
	out := make([]task.Comment, 0, len(comments))
	for _, c := range comments {
		out = append(out, task.Comment{ID: c.ID, Text: c.Text})
	}
	return out
}
