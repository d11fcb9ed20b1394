package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/tasklinehq/taskline/internal/domain/task"
	"github.com/tasklinehq/taskline/internal/tracker"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Store is the slice of the task repository the reconciler needs
type Store interface {
	GetAll(ctx context.Context) ([]*task.Task, error)
	Upsert(ctx context.Context, t *task.Task) error
}

// Projector refreshes chat surfaces after a reconciled change
type Projector interface {
	Reproject(ctx context.Context, t *task.Task)
}

// Stats summarizes one reconciliation cycle
type Stats struct {
	Pulled      int
	StatusFixed int
	Comments    int
	Created     int
}

// Reconciler periodically pulls the external tracker and merges it into
// the local store. Concurrent triggers collapse into one in-flight cycle;
// late callers share its result.
type Reconciler struct {
	store        Store
	trackerAPI   tracker.Client
	projector    Projector
	operatorID   string
	operatorName string
	group        singleflight.Group
	logger       *zap.Logger
}

// New creates a reconciler
func New(store Store, trackerClient tracker.Client, proj Projector, operatorID, operatorName string, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		store:        store,
		trackerAPI:   trackerClient,
		projector:    proj,
		operatorID:   operatorID,
		operatorName: operatorName,
		logger:       logger,
	}
}

// RunCycle executes one pull-merge-persist cycle. A tracker outage fails
// the cycle cleanly: nothing local is touched and the next cycle retries.
func (r *Reconciler) RunCycle(ctx context.Context) (Stats, error) {
	v, err, shared := r.group.Do("cycle", func() (any, error) {
		return r.runCycle(ctx)
	})
	if err != nil {
		return Stats{}, err
	}
	if shared {
		r.logger.Debug("Reconciliation cycle shared with concurrent trigger")
	}
	return v.(Stats), nil
}

func (r *Reconciler) runCycle(ctx context.Context) (Stats, error) {
	if r.trackerAPI == nil {
		return Stats{}, fmt.Errorf("external tracker not configured")
	}

	started := time.Now()

	external, err := r.trackerAPI.ListAll(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to pull tracker state: %w", err)
	}

	local, err := r.store.GetAll(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to load local tasks: %w", err)
	}

	changes := Merge(local, external, r.operatorID, r.operatorName, time.Now())

	stats := Stats{Pulled: len(external)}
	for _, c := range changes {
		if err := r.store.Upsert(ctx, c.Task); err != nil {
			r.logger.Error("Failed to persist reconciled task",
				zap.Int64("task_id", c.Task.ID),
				zap.Error(err))
			continue
		}
		switch {
		case c.Created:
			stats.Created++
		case c.StatusChanged:
			stats.StatusFixed++
		}
		stats.Comments += c.CommentsAdded

		// Freshly synthesized tasks have no surfaces yet; reprojecting
		// them is a no-op until something fans them out.
		if c.StatusChanged || c.CommentsAdded > 0 {
			r.projector.Reproject(ctx, c.Task)
		}
	}

	r.logger.Info("Reconciliation cycle finished",
		zap.Int("pulled", stats.Pulled),
		zap.Int("status_fixed", stats.StatusFixed),
		zap.Int("comments", stats.Comments),
		zap.Int("created", stats.Created),
		zap.Duration("elapsed", time.Since(started)))

	return stats, nil
}
