package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/tasklinehq/taskline/internal/ai"
	"github.com/tasklinehq/taskline/internal/config"
	"github.com/tasklinehq/taskline/internal/directory"
	"github.com/tasklinehq/taskline/internal/interfaces/http"
	"github.com/tasklinehq/taskline/internal/lark"
	"github.com/tasklinehq/taskline/internal/projector"
	"github.com/tasklinehq/taskline/internal/report"
	"github.com/tasklinehq/taskline/internal/repository"
	"github.com/tasklinehq/taskline/internal/service"
	intsync "github.com/tasklinehq/taskline/internal/sync"
	"github.com/tasklinehq/taskline/internal/tracker"
	"github.com/tasklinehq/taskline/internal/worker"
	"github.com/tasklinehq/taskline/pkg/database"
	"github.com/tasklinehq/taskline/pkg/utils"
)

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting taskline",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	taskRepo, err := repository.NewTaskRepository(db, logger)
	if err != nil {
		logger.Fatal("Failed to initialize task repository", zap.Error(err))
	}

	dir, err := directory.NewService(cfg.Directory.Path, cfg.Directory.OperatorID, logger)
	if err != nil {
		logger.Fatal("Failed to load staff directory", zap.Error(err))
	}

	larkClient := lark.NewClient(lark.Config{
		AppID:     cfg.Lark.AppID,
		AppSecret: cfg.Lark.AppSecret,
	}, logger)
	messenger := lark.NewMessenger(larkClient, logger)

	proj := projector.New(messenger, projector.NewRenderer(dir), logger)

	// Data-loss refusals surface in the operator's chat, not just the log.
	taskRepo.SetEscalation(func(prevCount, nextCount int) {
		proj.Notice(context.Background(), cfg.Directory.OperatorChatID,
			fmt.Sprintf("⚠️ Task store bulk write refused: %d tasks would shrink to %d", prevCount, nextCount))
	})

	var trackerClient tracker.Client
	if cfg.Tracker.Token != "" {
		trackerClient = tracker.NewTodoist(tracker.TodoistConfig{
			Token:     cfg.Tracker.Token,
			ProjectID: cfg.Tracker.ProjectID,
			BaseURL:   cfg.Tracker.BaseURL,
		}, logger)
	} else {
		logger.Info("External tracker disabled")
	}

	var improver service.TextImprover
	if cfg.OpenAI.APIKey != "" {
		improver = ai.NewImprover(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger)
	}

	taskService := service.NewTaskService(taskRepo, dir, proj, trackerClient, improver, cfg.Directory.RelayChatID, logger)
	actionService := service.NewActionService(taskRepo, dir, proj, trackerClient, logger)

	reconciler := intsync.New(taskRepo, trackerClient, proj,
		dir.OperatorID(), dir.DisplayName(dir.OperatorID()), logger)

	workers := worker.NewManager(logger)
	if trackerClient != nil {
		workers.Register(worker.NewReconcileWorker(reconciler, cfg.Tracker.Interval, logger))
	}
	workers.Register(worker.NewPurgeWorker(taskRepo, cfg.Purge.Grace, logger))

	exporter := report.NewExporter(taskRepo, logger)

	handlers := http.NewHandlers(taskService, actionService, reconciler, exporter, logger)
	server := http.NewServer(http.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, handlers, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workers.StartAll(ctx); err != nil {
		logger.Fatal("Failed to start background workers", zap.Error(err))
	}
	logger.Info("Background workers running", zap.Int("count", workers.Count()))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}

	cancel()
	workers.StopAll()

	logger.Info("Server exited")
}
