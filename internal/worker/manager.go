package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Worker is the contract every background loop satisfies
type Worker interface {
	Start(ctx context.Context) error
	Stop()
	Name() string
}

// Manager owns the lifecycle of the background workers. Workers start in
// registration order and stop in reverse, so the reconciler is already
// down before the stores it writes to go away.
type Manager struct {
	mu      sync.Mutex
	workers []Worker
	started int
	logger  *zap.Logger
}

// NewManager creates a manager for the given workers; more can be added
// with Register before StartAll
func NewManager(logger *zap.Logger, workers ...Worker) *Manager {
	return &Manager{workers: workers, logger: logger}
}

// Register adds a worker. Must be called before StartAll.
func (m *Manager) Register(w Worker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers = append(m.workers, w)
}

// StartAll starts every registered worker. On failure the workers that
// already started are stopped again and the error is returned.
func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range m.workers {
		if err := w.Start(ctx); err != nil {
			m.logger.Error("Failed to start worker",
				zap.String("name", w.Name()),
				zap.Error(err))
			m.stopStartedLocked()
			return err
		}
		m.started++
		m.logger.Info("Worker started", zap.String("name", w.Name()))
	}
	return nil
}

// StopAll stops the started workers in reverse order
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopStartedLocked()
}

func (m *Manager) stopStartedLocked() {
	for i := m.started - 1; i >= 0; i-- {
		w := m.workers[i]
		w.Stop()
		m.logger.Info("Worker stopped", zap.String("name", w.Name()))
	}
	m.started = 0
}

// Count returns the number of registered workers
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workers)
}
