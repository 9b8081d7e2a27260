package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/opicamp/opicamp/internal/app"
	jobmetrics "github.com/opicamp/opicamp/internal/jobs"
	"github.com/opicamp/opicamp/internal/media"
	"github.com/opicamp/opicamp/internal/menu"
	"github.com/opicamp/opicamp/internal/menu/snapshot"
	"github.com/opicamp/opicamp/internal/platform/db"
	"github.com/opicamp/opicamp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := jobmetrics.NewMetrics(nil)

	menuRepo := menu.NewRepository(pool)
	generator := snapshot.NewGenerator(menuRepo, cfg.SnapshotDir)
	snapshotJob := jobs.NewSnapshotRefreshJob(generator, logger, metrics)

	mediaStore := media.NewStore(cfg.MediaDir)
	cleanupJob := jobs.NewMediaCleanupJob(mediaStore, cfg.MediaRetention, logger, metrics)

	cleanupTask, err := jobs.NewMediaCleanupTask(jobs.MediaCleanupPayload{Retention: cfg.MediaRetention})
	if err != nil {
		logger.Error("build cleanup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskMediaCleanup, Handler: cleanupJob.Handle},
			{Type: jobs.TaskSnapshotRefresh, Handler: snapshotJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "30 2 * * *", Task: cleanupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 3 * * *", Task: jobs.NewSnapshotRefreshTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
