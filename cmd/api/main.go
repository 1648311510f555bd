package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/sla-analytics/internal/api/http"
	"github.com/spec-kit/sla-analytics/internal/api/http/handlers"
	"github.com/spec-kit/sla-analytics/internal/auth"
	"github.com/spec-kit/sla-analytics/internal/config"
	"github.com/spec-kit/sla-analytics/internal/domain"
	"github.com/spec-kit/sla-analytics/internal/events"
	"github.com/spec-kit/sla-analytics/internal/observability"
	"github.com/spec-kit/sla-analytics/internal/persistence"
	"github.com/spec-kit/sla-analytics/internal/repository"
	"github.com/spec-kit/sla-analytics/internal/service"
	"github.com/spec-kit/sla-analytics/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	rd := persistence.NewRedis(cfg.Redis, logger)
	defer rd.Close()

	pool := pg.PoolHandle()
	var source repository.TicketSource
	var store repository.RunStore
	if pool != nil {
		source = repository.NewTicketSource(pool, cfg.Postgres.SourceTable)
		store = repository.NewRunStore(pool)
	}
	cache := repository.NewReportCache(rd, cfg.Redis.SnapshotTTL())

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartReportWorker(service.NewAlertService(dispatcher, logger, cfg.Notification))

	authService := service.NewAuthService(cfg.Auth, logger)
	analysisService := service.NewAnalysisService(service.AnalysisDependencies{
		Source:      source,
		Store:       store,
		Cache:       cache,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
		Lookup:      domain.DefaultRegionLookup(),
		Analysis:    cfg.Analysis,
		SourceLabel: cfg.Postgres.SourceTable,
	})

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager())

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, time.Duration(cfg.App.RequestTimeoutSeconds)*time.Second)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rd),
		Metrics:        handlers.NewMetricsHandler(metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Analysis:       handlers.NewAnalysisHandler(analysisService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
