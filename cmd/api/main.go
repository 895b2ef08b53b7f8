package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/telun/repodoc/internal/api"
	"github.com/telun/repodoc/internal/api/middleware"
	"github.com/telun/repodoc/internal/analyzer"
	"github.com/telun/repodoc/internal/artifact"
	"github.com/telun/repodoc/internal/config"
	"github.com/telun/repodoc/internal/generator"
	"github.com/telun/repodoc/internal/logger"
	"github.com/telun/repodoc/internal/service"
	"github.com/telun/repodoc/internal/store"
	"github.com/telun/repodoc/internal/vcs"
)

func main() {
	appLogger := logger.New(logger.LoadFromEnv())
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	jobStore, err := store.New(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize job store")
	}

	var artifacts artifact.Store
	if cfg.Artifacts.Enabled {
		s3Store, err := artifact.NewS3Store(&cfg.Artifacts)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize artifact store")
		}
		if err := s3Store.EnsureBucket(context.Background()); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure artifact bucket")
		}
		artifacts = s3Store
	}

	orchestrator := service.NewOrchestrator(
		jobStore,
		vcs.NewGitClient(&cfg.VCS),
		analyzer.New(),
		generator.New(&cfg.Generator),
		artifacts,
		service.OrchestratorConfig{
			WorkspaceRoot: cfg.Workspace.Root,
			CloneTimeout:  cfg.VCS.CloneTimeout,
		},
	)

	router := api.SetupRouter(orchestrator, jobStore, cfg.Server.Mode, middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
