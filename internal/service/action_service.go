package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tasklinehq/taskline/internal/domain/task"
	"github.com/tasklinehq/taskline/internal/repository"
	"github.com/tasklinehq/taskline/internal/tracker"
	"go.uber.org/zap"
)

// ActionResult reports the outcome of a processed action
type ActionResult struct {
	Status task.Status
	// AlreadyTerminal marks an idempotent success: the task had already
	// reached a terminal status before this request.
	AlreadyTerminal bool
}

// ActionService is the state machine around viewer-initiated transitions.
// Persisted status is the durable fact; reprojection and the external
// mirror are best-effort followers that are never rolled back into.
type ActionService struct {
	store     TaskStore
	directory Directory
	projector Projector
	tracker   tracker.Client
	logger    *zap.Logger
}

// NewActionService creates a new action service. tracker may be nil when
// no external mirroring is configured.
func NewActionService(store TaskStore, directory Directory, projector Projector, trackerClient tracker.Client, logger *zap.Logger) *ActionService {
	return &ActionService{
		store:     store,
		directory: directory,
		projector: projector,
		tracker:   trackerClient,
		logger:    logger,
	}
}

// Apply validates and executes one action against the authoritative task.
// Legality is always re-derived from the freshly loaded task and the
// acting viewer, never from whatever affordance the click came from.
func (s *ActionService) Apply(ctx context.Context, taskID int64, action task.Action, actorID string) (ActionResult, error) {
	if !action.IsValid() {
		return ActionResult{}, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	t, err := s.store.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ActionResult{}, ErrNotFound
		}
		return ActionResult{}, err
	}

	if t.Status.IsTerminal() {
		// Repeat clicks on consumed actions land here and succeed.
		return ActionResult{Status: t.Status, AlreadyTerminal: true}, nil
	}

	viewer := s.directory.ViewerFor(actorID)
	if !actionLegal(task.LegalActions(t, viewer), action) {
		s.logger.Info("Action denied",
			zap.Int64("task_id", taskID),
			zap.String("action", action.String()),
			zap.String("actor_id", actorID))
		return ActionResult{}, ErrPermissionDenied
	}

	now := time.Now()
	switch action {
	case task.ActionTake:
		t.Status = task.StatusInProgress
		t.AssigneeID = actorID
		t.AssigneeName = s.directory.DisplayName(actorID)
	case task.ActionFinish:
		t.Status = task.StatusDone
	case task.ActionCancel:
		t.Status = task.StatusCancelled
	}
	t.AppendHistory(action.String(), actorID, now)

	if err := s.store.Upsert(ctx, t); err != nil {
		return ActionResult{}, fmt.Errorf("failed to persist action: %w", err)
	}

	// The transition is committed. Everything below follows best-effort.
	s.projector.Reproject(ctx, t)
	s.pushOutward(ctx, t, action)
	s.announce(ctx, t, action, actorID)

	s.logger.Info("Action applied",
		zap.Int64("task_id", taskID),
		zap.String("action", action.String()),
		zap.String("actor_id", actorID),
		zap.String("status", t.Status.String()))

	return ActionResult{Status: t.Status}, nil
}

func actionLegal(legal []task.Action, a task.Action) bool {
	for _, x := range legal {
		if x == a {
			return true
		}
	}
	return false
}

// pushOutward mirrors the transition into the external tracker
func (s *ActionService) pushOutward(ctx context.Context, t *task.Task, action task.Action) {
	if s.tracker == nil || t.ExternalRef == "" {
		return
	}

	var err error
	switch action {
	case task.ActionFinish:
		err = s.tracker.MarkComplete(ctx, t.ExternalRef)
	case task.ActionCancel:
		err = s.tracker.Delete(ctx, t.ExternalRef)
	}
	if err != nil {
		// The reconciler picks this up next cycle; local state stands.
		s.logger.Warn("Failed to push transition to tracker",
			zap.Int64("task_id", t.ID),
			zap.String("external_ref", t.ExternalRef),
			zap.Error(err))
	}
}

// announce posts a short activity notice into the department chat and
// mirrors it as a tracker comment for externally mirrored tasks
func (s *ActionService) announce(ctx context.Context, t *task.Task, action task.Action, actorID string) {
	actorName := s.directory.DisplayName(actorID)
	var text string
	switch action {
	case task.ActionTake:
		text = fmt.Sprintf("🟡 %s took «%s»", actorName, t.Text)
	case task.ActionFinish:
		text = fmt.Sprintf("✅ %s finished «%s»", actorName, t.Text)
	case task.ActionCancel:
		text = fmt.Sprintf("❌ %s cancelled «%s»", actorName, t.Text)
	}

	s.projector.Notice(ctx, s.directory.ChatID(t.Department), text)

	if s.tracker != nil && t.ExternalRef != "" && action == task.ActionTake {
		if _, err := s.tracker.AddComment(ctx, t.ExternalRef, text); err != nil {
			s.logger.Warn("Failed to mirror activity comment",
				zap.Int64("task_id", t.ID),
				zap.Error(err))
		}
	}
}
