package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gradedesk/gradedesk/internal/client"
	"github.com/gradedesk/gradedesk/internal/config"
	"github.com/gradedesk/gradedesk/internal/database"
	"github.com/gradedesk/gradedesk/internal/handler"
	"github.com/gradedesk/gradedesk/internal/health"
	"github.com/gradedesk/gradedesk/internal/logger"
	"github.com/gradedesk/gradedesk/internal/repository"
	"github.com/gradedesk/gradedesk/internal/router"
	"github.com/gradedesk/gradedesk/internal/service"
	"github.com/gradedesk/gradedesk/internal/validator"
	"github.com/gradedesk/gradedesk/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("grader", cfg.GraderBaseURL).
		Msg("Starting gradedesk gateway")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Grading Backend ───────────────────────────────────────────────
	grader := client.New(cfg.GraderBaseURL, cfg.GraderTimeout, log)

	monitor := health.NewMonitor(grader, health.Options{
		Interval:   cfg.HealthInterval,
		Retries:    cfg.HealthRetries,
		RetryDelay: cfg.HealthRetryDelay,
	}, log)

	// ─── Initialize Repositories ───────────────────────────────────────
	attemptRepo := repository.NewAttemptRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	workspaceService := service.NewWorkspaceService(cfg)
	attemptService := service.NewAttemptService(attemptRepo, rdb)
	gradingService := service.NewGradingService(grader, attemptService, log)
	questionService := service.NewQuestionService(grader, cfg.DefaultTopic, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Grade:     handler.NewGradeHandler(gradingService, questionService),
		Status:    handler.NewStatusHandler(monitor, log),
		Workspace: handler.NewWorkspaceHandler(workspaceService),
		Attempt:   handler.NewAttemptHandler(attemptService),
		WS:        handler.NewWSHandler(gradingService, questionService, monitor, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	attemptWorker := worker.NewAttemptWorker(attemptRepo, rdb, log)

	go attemptWorker.Start(workerCtx)
	go monitor.Run(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(workspaceService, handlers, cfg, rdb, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests. SSE and WebSocket clients are
	// cut off when the deadline passes.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the monitor and the attempt worker, which flushes its batch.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
