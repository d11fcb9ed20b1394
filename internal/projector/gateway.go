package projector

import (
	"context"

	"github.com/tasklinehq/taskline/internal/domain/task"
)

// Payload is one surface-specific rendering of a task. For multi-attachment
// tasks the transport groups the items; only the lead item carries Text and
// Actions, and the returned handle addresses that lead item.
type Payload struct {
	TaskID      int64
	Text        string
	Attachments []task.Attachment
	Actions     []task.Action
}

// EditResult classifies the transport's response to an edit
type EditResult int

const (
	EditOK EditResult = iota
	// EditUnchanged means the rendered content already matched. An
	// idempotent no-op, reported as success by the projector.
	EditUnchanged
	// EditNotFound means the message no longer exists in the chat
	EditNotFound
)

// Gateway is the messaging transport consumed by the projector. Failures
// are per-surface and never authoritative: the store is.
type Gateway interface {
	// SendRendering pushes a new rendering and returns the lead message id
	SendRendering(ctx context.Context, chatID string, p Payload) (string, error)

	// EditRendering replaces the rendering at (chatID, messageID)
	EditRendering(ctx context.Context, chatID, messageID string, p Payload) (EditResult, error)

	// SendNotice pushes a short plain-text activity message
	SendNotice(ctx context.Context, chatID, text string) error
}
