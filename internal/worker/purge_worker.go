package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Purger removes terminal tasks older than a cutoff
type Purger interface {
	PurgeTerminalBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// PurgeWorker sweeps done and cancelled tasks out of the store once they
// are older than the grace period. Active tasks are never touched.
type PurgeWorker struct {
	purger Purger
	grace  time.Duration
	logger *zap.Logger

	mu        sync.Mutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewPurgeWorker creates a purge worker. grace is how long a terminal
// task stays visible before removal.
func NewPurgeWorker(purger Purger, grace time.Duration, logger *zap.Logger) *PurgeWorker {
	if grace <= 0 {
		grace = 30 * 24 * time.Hour
	}
	return &PurgeWorker{
		purger: purger,
		grace:  grace,
		logger: logger,
	}
}

// Start starts the purge loop
func (w *PurgeWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("purge worker is already running")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.isRunning = true

	w.logger.Info("PurgeWorker started", zap.Duration("grace", w.grace))

	go w.loop()

	return nil
}

// Stop stops the purge loop
func (w *PurgeWorker) Stop() {
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
func (w *PurgeWorker) Name() string {
	return "PurgeWorker"
}

func (w *PurgeWorker) loop() {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	w.sweep()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *PurgeWorker) sweep() {
	ctx, cancel := context.WithTimeout(w.ctx, time.Minute)
	defer cancel()

	purged, err := w.purger.PurgeTerminalBefore(ctx, time.Now().Add(-w.grace))
	if err != nil {
		w.logger.Error("Failed to purge terminal tasks", zap.Error(err))
		return
	}
	if purged > 0 {
		w.logger.Info("Purged terminal tasks", zap.Int("count", purged))
	}
}
