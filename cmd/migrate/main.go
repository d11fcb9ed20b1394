// Command migrate imports a legacy JSON task dump into the sqlite store.
// The import is all-or-nothing and refuses dumps that would shrink the
// stored task set by more than half.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/tasklinehq/taskline/internal/config"
	"github.com/tasklinehq/taskline/internal/domain/task"
	"github.com/tasklinehq/taskline/internal/repository"
	"github.com/tasklinehq/taskline/pkg/database"
	"github.com/tasklinehq/taskline/pkg/utils"
)

// legacyTask mirrors the JSON dump produced by the previous bot
type legacyTask struct {
	ID           int64  `json:"id"`
	Text         string `json:"text"`
	Status       string `json:"status"`
	Department   string `json:"department"`
	AuthorID     string `json:"author_id"`
	AuthorName   string `json:"author_name"`
	AssigneeID   string `json:"assignee_id"`
	AssigneeName string `json:"assignee_name"`
	CreatedAt    int64  `json:"created_at"` // unix milliseconds
	ExternalRef  string `json:"todoist_id"`
}

func main() {
	_ = gotenv.Load()

	var (
		configPath = flag.String("config", "configs/config.yaml", "path to config file")
		dumpPath   = flag.String("dump", "", "path to legacy JSON task dump")
		force      = flag.Bool("force", false, "on shrink refusal, merge the dump in without deleting existing tasks")
	)
	flag.Parse()

	if *dumpPath == "" {
		fmt.Fprintln(os.Stderr, "usage: migrate -dump tasks.json [-config configs/config.yaml] [-force]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: "stdout",
		Format:     "console",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	tasks, err := loadDump(*dumpPath)
	if err != nil {
		logger.Fatal("Failed to read dump", zap.Error(err))
	}
	logger.Info("Dump loaded", zap.String("path", *dumpPath), zap.Int("tasks", len(tasks)))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	repo, err := repository.NewTaskRepository(db, logger)
	if err != nil {
		logger.Fatal("Failed to initialize task repository", zap.Error(err))
	}

	ctx := context.Background()

	err = repo.ReplaceAll(ctx, tasks)
	if errors.Is(err, repository.ErrDataLossGuard) && *force {
		logger.Warn("Shrink refused; merging dump without deletions per -force")
		err = mergeDump(ctx, repo, tasks)
	}
	if err != nil {
		logger.Fatal("Import failed", zap.Error(err))
	}

	logger.Info("Import finished", zap.Int("tasks", len(tasks)))
}

func loadDump(path string) ([]*task.Task, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var legacy []legacyTask
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, fmt.Errorf("failed to parse dump: %w", err)
	}

	tasks := make([]*task.Task, 0, len(legacy))
	for _, lt := range legacy {
		t, err := convert(lt)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func convert(lt legacyTask) (*task.Task, error) {
	status := task.Status(lt.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("task %d has unknown status %q", lt.ID, lt.Status)
	}
	if lt.Text == "" {
		return nil, fmt.Errorf("task %d has empty text", lt.ID)
	}

	return &task.Task{
		ID:           lt.ID,
		Text:         lt.Text,
		Status:       status,
		Department:   lt.Department,
		AuthorID:     lt.AuthorID,
		AuthorName:   lt.AuthorName,
		AssigneeID:   lt.AssigneeID,
		AssigneeName: lt.AssigneeName,
		CreatedAt:    time.UnixMilli(lt.CreatedAt),
		ExternalRef:  lt.ExternalRef,
	}, nil
}

// mergeDump upserts the dump contents one by one, leaving tasks not in
// the dump alone. Used when the full replace was refused and the operator
// passed -force.
func mergeDump(ctx context.Context, repo *repository.TaskRepository, tasks []*task.Task) error {
	for _, t := range tasks {
		if err := repo.Upsert(ctx, t); err != nil {
			return err
		}
	}
	return nil
}
