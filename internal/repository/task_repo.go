package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tasklinehq/taskline/internal/domain/task"
	"github.com/tasklinehq/taskline/pkg/database"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when no task exists with the given id
	ErrNotFound = errors.New("task not found")

	// ErrDataLossGuard is returned when a bulk write is refused because it
	// would shrink the persisted set past the guard threshold
	ErrDataLossGuard = errors.New("write refused by data-loss guard")
)

// guardFloor is the set size below which the shrink guard does not apply.
// Small sets shrink legitimately (tests, fresh installs, purges).
const guardFloor = 10

// EscalationFunc notifies the privileged operator that a write was refused
type EscalationFunc func(prevCount, nextCount int)

// TaskRepository is the durable task store. It is the single source of
// truth; rendered surface content is never authoritative. Records
// round-trip losslessly through a JSON payload column, ordered by id.
type TaskRepository struct {
	db       *database.DB
	logger   *zap.Logger
	escalate EscalationFunc
}

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id         INTEGER PRIMARY KEY,
	status     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	payload    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
`

// NewTaskRepository creates the repository and ensures the schema exists
func NewTaskRepository(db *database.DB, logger *zap.Logger) (*TaskRepository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create tasks schema: %w", err)
	}
	return &TaskRepository{db: db, logger: logger}, nil
}

// SetEscalation registers the operator notification hook used when the
// data-loss guard refuses a write
func (r *TaskRepository) SetEscalation(fn EscalationFunc) {
	r.escalate = fn
}

// Upsert replaces the task with the same id or appends it
func (r *TaskRepository) Upsert(ctx context.Context, t *task.Task) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal task %d: %w", t.ID, err)
	}

	query := `
		INSERT INTO tasks (id, status, created_at, payload) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET status = excluded.status, payload = excluded.payload
	`
	if _, err := r.db.ExecContext(ctx, query, t.ID, string(t.Status), t.CreatedAt, string(payload)); err != nil {
		r.logger.Error("Failed to upsert task", zap.Int64("task_id", t.ID), zap.Error(err))
		return fmt.Errorf("failed to upsert task: %w", err)
	}
	return nil
}

// GetByID returns a defensive copy of the task with the given id
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM tasks WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get task", zap.Int64("task_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return decodeTask(payload)
}

// GetAll returns defensive copies of every task, ordered by id (creation
// order, since ids are creation-time derived)
func (r *TaskRepository) GetAll(ctx context.Context) ([]*task.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT payload FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		t, err := decodeTask(payload)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ReplaceAll swaps the full persisted set in one transaction. The write is
// refused when it would shrink a set larger than the guard floor by more
// than half; the escalation hook fires and nothing is committed.
func (r *TaskRepository) ReplaceAll(ctx context.Context, tasks []*task.Task) error {
	return r.db.WithTransaction(func(tx *sql.Tx) error {
		// The guard count runs inside the transaction so a concurrent
		// write between the count and the delete cannot skew the ratio.
		var prev int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&prev); err != nil {
			return fmt.Errorf("failed to count tasks: %w", err)
		}

		if prev > guardFloor && len(tasks)*2 < prev {
			r.logger.Error("Data-loss guard refused bulk write",
				zap.Int("previous", prev),
				zap.Int("pending", len(tasks)))
			if r.escalate != nil {
				r.escalate(prev, len(tasks))
			}
			return ErrDataLossGuard
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
			return fmt.Errorf("failed to clear tasks: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO tasks (id, status, created_at, payload) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, t := range tasks {
			payload, err := json.Marshal(t)
			if err != nil {
				return fmt.Errorf("failed to marshal task %d: %w", t.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, t.ID, string(t.Status), t.CreatedAt, string(payload)); err != nil {
				return fmt.Errorf("failed to insert task %d: %w", t.ID, err)
			}
		}
		return nil
	})
}

// PurgeTerminalBefore removes done and cancelled tasks created before the
// cutoff and returns how many were removed
func (r *TaskRepository) PurgeTerminalBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE status IN (?, ?) AND created_at < ?`,
		string(task.StatusDone), string(task.StatusCancelled), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge terminal tasks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged tasks: %w", err)
	}
	if n > 0 {
		r.logger.Info("Purged aged terminal tasks", zap.Int64("count", n))
	}
	return int(n), nil
}

func decodeTask(payload string) (*task.Task, error) {
	var t task.Task
	if err := json.Unmarshal([]byte(payload), &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task payload: %w", err)
	}
	return &t, nil
}
