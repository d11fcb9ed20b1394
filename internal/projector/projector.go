package projector

import (
	"context"

	"github.com/tasklinehq/taskline/internal/domain/task"
	"go.uber.org/zap"
)

// Target names a chat to fan a new task out to
type Target struct {
	Kind   task.SurfaceKind
	ChatID string
}

// Projector owns the surface registry on each task: fan-out records one
// SurfaceRef per reachable target, reprojection walks the recorded refs.
// Projection is best-effort; a failed surface self-heals on the next
// transition because the refs stay registered.
type Projector struct {
	gateway  Gateway
	renderer *Renderer
	logger   *zap.Logger
}

// New creates a projector
func New(gateway Gateway, renderer *Renderer, logger *zap.Logger) *Projector {
	return &Projector{gateway: gateway, renderer: renderer, logger: logger}
}

// ProjectInitial renders the task once and pushes it to every target,
// registering a surface entry for each successful send. Targets that fail
// are logged and skipped; the task keeps working with the surfaces it got.
func (p *Projector) ProjectInitial(ctx context.Context, t *task.Task, targets []Target) {
	payload := p.renderer.Render(t)
	for _, target := range targets {
		messageID, err := p.gateway.SendRendering(ctx, target.ChatID, payload)
		if err != nil {
			p.logger.Error("Failed to project task to target",
				zap.Int64("task_id", t.ID),
				zap.String("chat_id", target.ChatID),
				zap.Error(err))
			continue
		}
		t.RecordSurface(task.SurfaceRef{
			Kind:      target.Kind,
			ChatID:    target.ChatID,
			MessageID: messageID,
		})
	}
}

// Reproject re-renders the task and edits every registered surface in
// place. For grouped media only the lead item is addressed, so follower
// items are never touched. An unchanged result is an idempotent success.
func (p *Projector) Reproject(ctx context.Context, t *task.Task) {
	payload := p.renderer.Render(t)
	for _, ref := range t.Surfaces {
		result, err := p.gateway.EditRendering(ctx, ref.ChatID, ref.MessageID, payload)
		if err != nil {
			p.logger.Warn("Failed to reproject surface",
				zap.Int64("task_id", t.ID),
				zap.String("chat_id", ref.ChatID),
				zap.String("message_id", ref.MessageID),
				zap.Error(err))
			continue
		}
		if result == EditNotFound {
			p.logger.Warn("Surface message no longer exists",
				zap.Int64("task_id", t.ID),
				zap.String("chat_id", ref.ChatID),
				zap.String("message_id", ref.MessageID))
		}
	}
}

// Notice pushes a short activity line into a chat, best-effort
func (p *Projector) Notice(ctx context.Context, chatID, text string) {
	if chatID == "" {
		return
	}
	if err := p.gateway.SendNotice(ctx, chatID, text); err != nil {
		p.logger.Warn("Failed to send activity notice",
			zap.String("chat_id", chatID),
			zap.Error(err))
	}
}
