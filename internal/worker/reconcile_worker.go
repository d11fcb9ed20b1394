package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	intsync "github.com/tasklinehq/taskline/internal/sync"
	"go.uber.org/zap"
)

// ReconcileWorker drives the external tracker reconciler on a fixed
// interval. Cycles triggered over HTTP while the ticker fires collapse
// into one pull inside the reconciler itself.
type ReconcileWorker struct {
	reconciler *intsync.Reconciler
	interval   time.Duration
	logger     *zap.Logger

	mu        sync.Mutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewReconcileWorker creates a reconcile worker
func NewReconcileWorker(reconciler *intsync.Reconciler, interval time.Duration, logger *zap.Logger) *ReconcileWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ReconcileWorker{
		reconciler: reconciler,
		interval:   interval,
		logger:     logger,
	}
}

// Start starts the reconciliation loop
func (w *ReconcileWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("reconcile worker is already running")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.isRunning = true

	w.logger.Info("ReconcileWorker started", zap.Duration("interval", w.interval))

	go w.loop()

	return nil
}

// Stop stops the reconciliation loop
func (w *ReconcileWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isRunning {
		return
	}

	w.isRunning = false
	if w.cancel != nil {
		w.cancel()
	}
}

// Name returns the worker name for identification
func (w *ReconcileWorker) Name() string {
	return "ReconcileWorker"
}

func (w *ReconcileWorker) loop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Reconcile immediately on start
	w.runOnce()

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Debug("Reconcile loop context cancelled")
			return

		case <-ticker.C:
			w.runOnce()
		}
	}
}

func (w *ReconcileWorker) runOnce() {
	ctx, cancel := context.WithTimeout(w.ctx, time.Minute)
	defer cancel()

	if _, err := w.reconciler.RunCycle(ctx); err != nil {
		// Tracker outages are expected; local state is untouched and
		// the next tick retries.
		w.logger.Warn("Reconciliation cycle failed", zap.Error(err))
	}
}
