package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tasklinehq/taskline/internal/domain/task"
	"github.com/tasklinehq/taskline/internal/projector"
	"github.com/tasklinehq/taskline/internal/tracker"
	"go.uber.org/zap"
)

// CreateInput carries everything needed to register a task
type CreateInput struct {
	Text        string
	Attachments []task.Attachment
	Department  string
	AuthorID    string
	// AssigneeID optionally pre-assigns the task. A task assigned to the
	// operator is mirrored into the external tracker.
	AssigneeID string
}

// TaskService registers new tasks and fans them out
type TaskService struct {
	store       TaskStore
	directory   Directory
	projector   Projector
	tracker     tracker.Client
	improver    TextImprover
	relayChatID string
	logger      *zap.Logger
}

// NewTaskService creates a task service. tracker and improver may be nil.
func NewTaskService(store TaskStore, directory Directory, proj Projector, trackerClient tracker.Client, improver TextImprover, relayChatID string, logger *zap.Logger) *TaskService {
	return &TaskService{
		store:       store,
		directory:   directory,
		projector:   proj,
		tracker:     trackerClient,
		improver:    improver,
		relayChatID: relayChatID,
		logger:      logger,
	}
}

// Create persists a new task and projects it to its surfaces. The task is
// durable before any fan-out happens; projection failures leave a task
// with fewer surfaces, not a lost task.
func (s *TaskService) Create(ctx context.Context, in CreateInput) (*task.Task, error) {
	if in.Text == "" {
		return nil, fmt.Errorf("%w: empty task text", ErrInvalidAction)
	}

	text := s.improveText(ctx, in.Text)

	t := task.New(text, in.Attachments, in.Department, in.AuthorID, s.directory.DisplayName(in.AuthorID))
	if in.AssigneeID != "" {
		t.AssigneeID = in.AssigneeID
		t.AssigneeName = s.directory.DisplayName(in.AssigneeID)
	}
	t.AppendHistory("create", in.AuthorID, time.Now())

	s.mirrorOutward(ctx, t)

	if err := s.store.Upsert(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to persist task: %w", err)
	}

	targets := s.fanOutTargets(t)
	s.projector.ProjectInitial(ctx, t, targets)

	// Surfaces registered during fan-out must survive a restart.
	if len(t.Surfaces) > 0 {
		if err := s.store.Upsert(ctx, t); err != nil {
			s.logger.Error("Failed to persist surface registry",
				zap.Int64("task_id", t.ID),
				zap.Error(err))
		}
	}

	s.logger.Info("Task created",
		zap.Int64("task_id", t.ID),
		zap.String("department", t.Department),
		zap.String("author_id", t.AuthorID),
		zap.Int("surfaces", len(t.Surfaces)))

	return t, nil
}

// improveText optionally rewrites the raw text. Any failure keeps the
// original wording.
func (s *TaskService) improveText(ctx context.Context, text string) string {
	if s.improver == nil {
		return text
	}
	improved, err := s.improver.Improve(ctx, text)
	if err != nil {
		s.logger.Warn("Text improvement failed, keeping original", zap.Error(err))
		return text
	}
	if improved == "" {
		return text
	}
	return improved
}

// mirrorOutward creates the external tracker twin for operator-assigned
// tasks and records the external reference on the task
func (s *TaskService) mirrorOutward(ctx context.Context, t *task.Task) {
	if s.tracker == nil || t.AssigneeID != s.directory.OperatorID() {
		return
	}
	note := fmt.Sprintf("from %s", t.AuthorName)
	externalID, err := s.tracker.Create(ctx, t.Text, note)
	if err != nil {
		s.logger.Warn("Failed to mirror task into tracker",
			zap.Int64("task_id", t.ID),
			zap.Error(err))
		return
	}
	t.ExternalRef = externalID
}

// fanOutTargets lists the chats a fresh task is rendered into: the
// department group always, plus the relay group for operator-assigned
// tasks
func (s *TaskService) fanOutTargets(t *task.Task) []projector.Target {
	var targets []projector.Target
	if chatID := s.directory.ChatID(t.Department); chatID != "" {
		targets = append(targets, projector.Target{Kind: task.SurfaceDepartmentGroup, ChatID: chatID})
	}
	if s.relayChatID != "" && t.AssigneeID == s.directory.OperatorID() {
		targets = append(targets, projector.Target{Kind: task.SurfaceRelayGroup, ChatID: s.relayChatID})
	}
	return targets
}
