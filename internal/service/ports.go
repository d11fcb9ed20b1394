package service

import (
	"context"

	"github.com/tasklinehq/taskline/internal/domain/task"
	"github.com/tasklinehq/taskline/internal/projector"
)

// TaskStore is the durable task repository consumed by the services. It is
// the single source of truth; reads return defensive copies.
type TaskStore interface {
	Upsert(ctx context.Context, t *task.Task) error
	GetByID(ctx context.Context, id int64) (*task.Task, error)
	GetAll(ctx context.Context) ([]*task.Task, error)
}

// Directory answers membership, privilege and naming questions
type Directory interface {
	ViewerFor(userID string) task.Viewer
	DisplayName(userID string) string
	DepartmentName(key string) string
	ChatID(key string) string
	OperatorID() string
}

// Projector fans tasks out to chat surfaces and keeps them in sync
type Projector interface {
	ProjectInitial(ctx context.Context, t *task.Task, targets []projector.Target)
	Reproject(ctx context.Context, t *task.Task)
	Notice(ctx context.Context, chatID, text string)
}

// TextImprover optionally rewrites raw task text before persisting. A
// failure falls back to the original text.
type TextImprover interface {
	Improve(ctx context.Context, text string) (string, error)
}
