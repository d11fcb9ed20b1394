package service

import (
	"context"

	"github.com/tasklinehq/taskline/internal/domain/task"
	"github.com/tasklinehq/taskline/internal/projector"
	"github.com/tasklinehq/taskline/internal/tracker"
)

type mockStore struct {
	UpsertFunc  func(ctx context.Context, t *task.Task) error
	GetByIDFunc func(ctx context.Context, id int64) (*task.Task, error)
	GetAllFunc  func(ctx context.Context) ([]*task.Task, error)

	upserted []*task.Task
}

func (m *mockStore) Upsert(ctx context.Context, t *task.Task) error {
	m.upserted = append(m.upserted, t.Clone())
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, t)
	}
	return nil
}

func (m *mockStore) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockStore) GetAll(ctx context.Context) ([]*task.Task, error) {
	if m.GetAllFunc != nil {
		return m.GetAllFunc(ctx)
	}
	return nil, nil
}

type mockDirectory struct {
	ViewerForFunc func(userID string) task.Viewer
	operatorID    string
	names         map[string]string
	chats         map[string]string
}

func (m *mockDirectory) ViewerFor(userID string) task.Viewer {
	if m.ViewerForFunc != nil {
		return m.ViewerForFunc(userID)
	}
	return task.Viewer{ID: userID}
}

func (m *mockDirectory) DisplayName(userID string) string {
	if name, ok := m.names[userID]; ok {
		return name
	}
	return userID
}

func (m *mockDirectory) DepartmentName(key string) string { return key }

func (m *mockDirectory) ChatID(key string) string { return m.chats[key] }

func (m *mockDirectory) OperatorID() string { return m.operatorID }

type mockProjector struct {
	ProjectInitialFunc func(ctx context.Context, t *task.Task, targets []projector.Target)

	reprojected []int64
	notices     []string
}

func (m *mockProjector) ProjectInitial(ctx context.Context, t *task.Task, targets []projector.Target) {
	if m.ProjectInitialFunc != nil {
		m.ProjectInitialFunc(ctx, t, targets)
	}
}

func (m *mockProjector) Reproject(ctx context.Context, t *task.Task) {
	m.reprojected = append(m.reprojected, t.ID)
}

func (m *mockProjector) Notice(ctx context.Context, chatID, text string) {
	m.notices = append(m.notices, chatID+": "+text)
}

type mockTracker struct {
	CreateFunc       func(ctx context.Context, text, note string) (string, error)
	MarkCompleteFunc func(ctx context.Context, id string) error
	DeleteFunc       func(ctx context.Context, id string) error

	completed []string
	deleted   []string
	comments  []string
}

var _ tracker.Client = (*mockTracker)(nil)

func (m *mockTracker) ListAll(ctx context.Context) ([]tracker.Entry, error) { return nil, nil }

func (m *mockTracker) Create(ctx context.Context, text, note string) (string, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, text, note)
	}
	return "", nil
}

func (m *mockTracker) MarkComplete(ctx context.Context, id string) error {
	m.completed = append(m.completed, id)
	if m.MarkCompleteFunc != nil {
		return m.MarkCompleteFunc(ctx, id)
	}
	return nil
}

func (m *mockTracker) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockTracker) AddComment(ctx context.Context, id, text string) (string, error) {
	m.comments = append(m.comments, text)
	return "c1", nil
}

type mockImprover struct {
	ImproveFunc func(ctx context.Context, text string) (string, error)
}

func (m *mockImprover) Improve(ctx context.Context, text string) (string, error) {
	if m.ImproveFunc != nil {
		return m.ImproveFunc(ctx, text)
	}
	return text, nil
}
