package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/godilite/eloca-metrics/internal/config"
	"github.com/godilite/eloca-metrics/internal/dashboard"
	handler "github.com/godilite/eloca-metrics/internal/grpc"
	"github.com/godilite/eloca-metrics/internal/httpapi"
	"github.com/godilite/eloca-metrics/internal/metrics"
	"github.com/godilite/eloca-metrics/internal/repository"
	"github.com/godilite/eloca-metrics/internal/service"
	"github.com/godilite/eloca-metrics/internal/sheet"
	"github.com/godilite/eloca-metrics/internal/source"
	"github.com/godilite/eloca-metrics/pkg/cache"
	dbbuilder "github.com/godilite/eloca-metrics/pkg/database"
	grpcsrv "github.com/godilite/eloca-metrics/pkg/grpc/server"

	"google.golang.org/grpc"
)

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      dashboard.Cacher
	dashboard  *dashboard.Service
	grpcServer *grpcsrv.Server
	httpServer *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	goals, err := config.LoadGoalsFile(cfg.GoalsFile)
	if err != nil {
		return nil, err
	}
	settings := goals.Apply(metrics.DefaultSettings())

	dbPool, err := dbbuilder.New(dbbuilder.Staging(cfg.StagingDSN)...)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Staging database initialized", zap.String("dsn", cfg.StagingDSN))

	cacheClient, err := newCache(ctx, cfg)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("cache init failed: %w", err)
	}
	logger.Info("Cache initialized", zap.String("backend", cfg.CacheBackend), zap.Duration("ttl", cfg.CacheTTL))

	fetcher := source.NewFetcher(
		source.WithTimeout(cfg.FetchTimeout),
		source.WithLogger(logger),
	)
	loader := sheet.NewLoader(logger)
	aggregator := metrics.NewAggregator(repository.NewDailyMetricsRepository(dbPool), settings, logger)

	pipeline := service.NewPipeline(fetcher, loader, aggregator, service.Options{
		Operational:    toSource(cfg.Operational),
		Survey:         toSource(cfg.Survey),
		ExpectedTables: cfg.ExpectedTables,
	}, logger)

	dash := dashboard.NewService(pipeline, cacheClient, cfg.CacheTTL, logger)

	grpcHandlers := handler.NewGRPCHandlers(dash, logger, 10*time.Minute)

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(cfg.DebugMode),
	)
	if err != nil {
		cacheClient.Close()
		dbPool.Close()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcServer.RegisterServiceWithHealth(handler.ServiceName, func(s grpc.ServiceRegistrar) {
		handler.RegisterDashboardServer(s, grpcHandlers)
	})

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		dashboard:  dash,
		grpcServer: grpcServer,
		httpServer: httpapi.New(cfg.HTTPAddr, cfg.AppTitle, dash, logger),
	}, nil
}

func newCache(ctx context.Context, cfg *config.Config) (dashboard.Cacher, error) {
	if cfg.CacheBackend != "redis" {
		return cache.NewMemory(), nil
	}
	client, err := cache.New(ctx,
		cache.WithAddress(cfg.RedisAddr),
		cache.WithPassword(cfg.RedisPassword),
		cache.WithDB(cfg.RedisDB),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func toSource(s config.Source) source.Source {
	return source.Source{
		Name:  s.Name,
		URL:   s.URL,
		Token: s.Token,
		File:  s.File,
		Sheet: s.Sheet,
	}
}

// Warm runs the pipeline once so the first request is served from cache.
// A failed warm-up is logged and left for the next request to retry.
func (a *App) Warm(ctx context.Context) {
	if _, err := a.dashboard.Bag(ctx); err != nil {
		a.logger.Warn("initial pipeline run failed", zap.Error(err))
	}
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	a.grpcServer.Start()
	a.httpServer.Start()
	go a.Warm(context.Background())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("http shutdown error", zap.Error(err))
	}
	if err := a.grpcServer.Shutdown(ctx); err != nil {
		a.logger.Error("grpc shutdown error", zap.Error(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("cache shutdown error", zap.Error(err))
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}

	select {
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			a.logger.Warn("shutdown completed but deadline exceeded")
		}
	default:
		a.logger.Info("graceful shutdown completed successfully")
	}

	_ = a.logger.Sync()
	return nil
}
