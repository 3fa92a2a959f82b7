package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juan-cardona/anxious-intelligence/internal/api"
	"github.com/juan-cardona/anxious-intelligence/internal/buildconfig"
	"github.com/juan-cardona/anxious-intelligence/internal/config"
	"github.com/juan-cardona/anxious-intelligence/internal/service"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Env files must load before the logger reads LOG_LEVEL.
	cfgErr := config.Load()

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	if cfgErr != nil {
		logger.Fatal("failed to load config", zap.Error(cfgErr))
	}

	dbURL := config.DatabaseURL()
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}
	logger.Info("connected to database")

	app := api.NewApp(pool, logger)

	// Surface completed revisions in the log; the engine itself has no
	// rendering dependency.
	go drainRevisionEvents(app.Engine, logger)

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:    addr,
		Handler: app.Router,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting",
			zap.String("addr", addr),
			zap.String("version", buildconfig.Version()),
			zap.String("commit", buildconfig.Commit()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	level := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(config.LogLevel()); err == nil {
		level = parsed
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}

func drainRevisionEvents(engine *service.RevisionEngine, logger *zap.Logger) {
	for ev := range engine.Events() {
		r := ev.Result
		switch r.Status {
		case service.StatusRevised:
			logger.Info("belief revision completed",
				zap.String("old_belief_id", r.BeliefID.String()),
				zap.String("new_belief_id", r.NewBeliefID.String()),
				zap.String("old_content", r.OldContent),
				zap.String("new_content", r.NewContent),
				zap.Int("depth", r.Depth),
				zap.Int("cascades", len(r.Cascades)))
		case service.StatusCascadeLimited:
			logger.Info("revision cascade depth limited",
				zap.String("belief_id", r.BeliefID.String()),
				zap.Int("depth", r.Depth))
		case service.StatusFailed:
			logger.Warn("belief revision failed",
				zap.String("belief_id", r.BeliefID.String()),
				zap.String("error", r.Error))
		}
	}
}
