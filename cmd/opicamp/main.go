package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/opicamp/opicamp/internal/access"
	"github.com/opicamp/opicamp/internal/app"
	"github.com/opicamp/opicamp/internal/auth"
	"github.com/opicamp/opicamp/internal/media"
	"github.com/opicamp/opicamp/internal/menu"
	"github.com/opicamp/opicamp/internal/menu/snapshot"
	"github.com/opicamp/opicamp/internal/observability"
	"github.com/opicamp/opicamp/internal/platform/cache"
	"github.com/opicamp/opicamp/internal/platform/db"
	"github.com/opicamp/opicamp/internal/shared"
	"github.com/opicamp/opicamp/internal/survey"
	"github.com/opicamp/opicamp/internal/users"
	"github.com/opicamp/opicamp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "opicamp_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo)
	guard := access.NewGuard(usersRepo, logger)
	usersHandler := users.NewHandler(logger, usersService, guard.RequireAdmin)

	menuRepo := menu.NewRepository(dbpool)
	menuService := menu.NewService(menuRepo)
	menuHandler := menu.NewHandler(logger, menuService, guard.RequireAdmin)

	generator := snapshot.NewGenerator(menuRepo, cfg.SnapshotDir)
	snapshotHandler := snapshot.NewHandler(logger, generator)

	surveyRepo := survey.NewRepository(dbpool)
	surveyService := survey.NewService(surveyRepo)
	surveyHandler := survey.NewHandler(logger, surveyService, guard.RequireAdmin)

	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, cfg.MediaRetention)
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	mediaSigner := media.NewSigner(cfg.MediaSecret)
	mediaStore := media.NewStore(cfg.MediaDir)
	mediaHandler := media.NewHandler(logger, mediaSigner, mediaStore, cfg.MediaURLTTL, jobsClient, guard.RequireAdmin)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionManager:  sessionManager,
		CSRFManager:     csrfManager,
		Guard:           guard,
		AuthHandler:     authHandler,
		MenuHandler:     menuHandler,
		SnapshotHandler: snapshotHandler,
		UsersHandler:    usersHandler,
		SurveyHandler:   surveyHandler,
		MediaHandler:    mediaHandler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
