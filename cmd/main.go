package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/channxy/ai-credit-assessment/internal/adapters/http/api"
	"github.com/channxy/ai-credit-assessment/internal/adapters/http/swagger"
	"github.com/channxy/ai-credit-assessment/internal/adapters/repository"
	"github.com/channxy/ai-credit-assessment/internal/adapters/repository/postgres"
	"github.com/channxy/ai-credit-assessment/internal/adapters/repository/redisstore"
	app "github.com/channxy/ai-credit-assessment/internal/app"
	"github.com/channxy/ai-credit-assessment/internal/config"
	"github.com/channxy/ai-credit-assessment/internal/domain/advisor"
	"github.com/channxy/ai-credit-assessment/internal/domain/scoring"
	"github.com/channxy/ai-credit-assessment/internal/domain/simulation"
	"github.com/channxy/ai-credit-assessment/pkg/logger"
	"github.com/channxy/ai-credit-assessment/pkg/metrics"
	"github.com/channxy/ai-credit-assessment/pkg/tracing"
	"github.com/gorilla/mux"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	migrateTimeout            = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Enabled:     cfg.TracingEnabled,
		ServiceName: cfg.ServiceName,
		SampleRatio: cfg.TracingSampleRatio,
	})
	if err != nil {
		loggerInstance.Error(ctx, "failed to initialize tracing", logger.Error(err))
		return
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			loggerInstance.Warn(sctx, "tracing shutdown failed", logger.Error(err))
		}
	}()

	svc, err := buildService(ctx, cfg, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "failed to build service", logger.Error(err))
		return
	}
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// Start service metrics updater
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newRouter registers docs and API routes.
func newRouter(ctx context.Context, cfg *config.Config, svc *app.Service) *mux.Router {
	r := mux.NewRouter()
	r.Use(api.RequestIDMiddleware, api.TimeoutMiddleware(cfg.RequestTimeout()))

	swagger.Register(ctx, r)
	api.NewServer(svc, svc).Register(ctx, r)
	return r
}

// buildService wires the engines and the configured storage backends.
func buildService(ctx context.Context, cfg *config.Config, l logger.Logger) (*app.Service, error) {
	store, history, err := openBackends(ctx, cfg)
	if err != nil {
		return nil, err
	}

	adv := advisor.New()
	scorer := scoring.NewEngine(
		scoring.WithWeights(cfg.Weights()),
		scoring.WithCalculator(scoring.NewCalculator(
			scoring.WithSalaryBand(cfg.SalaryReferenceMin, cfg.SalaryReferenceMax),
		)),
		scoring.WithRecommender(adv),
	)
	simulator := simulation.NewEngine(
		simulation.WithScorer(scorer),
		simulation.WithExperienceDiscount(cfg.JobChangeExperienceDiscount),
	)

	return app.New(
		app.WithLogger(l.With(logger.String("component", "service"))),
		app.WithStore(store),
		app.WithHistoryStore(history),
		app.WithAdvisor(adv),
		app.WithScorer(scorer),
		app.WithSimulator(simulator),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithStoreTimeout(cfg.StoreTimeout()),
		app.WithRetry(cfg.StoreRetryAttempts, cfg.RetryBackoff()),
		app.WithHistoryLimits(cfg.HistoryDefaultLimit, cfg.MaxHistoryLimit),
	), nil
}

// openBackends returns the profile-side store and the history store named
// by cfg. One Postgres pool serves both when both select it.
func openBackends(ctx context.Context, cfg *config.Config) (repository.Store, repository.HistoryStore, error) {
	var pg *postgres.Store
	if cfg.StoreBackend == config.BackendPostgres || cfg.HistoryBackend == config.BackendPostgres {
		octx, cancel := context.WithTimeout(ctx, migrateTimeout)
		defer cancel()
		db, err := postgres.Open(octx, cfg.PostgresDSN, cfg.PostgresMaxConns)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		pg = postgres.New(db)
		if err := pg.Migrate(octx); err != nil {
			_ = pg.Close()
			return nil, nil, fmt.Errorf("postgres migrate: %w", err)
		}
	}

	var store repository.Store = repository.NewMemoryStore()
	if cfg.StoreBackend == config.BackendPostgres {
		store = pg
	}

	var history repository.HistoryStore
	switch cfg.HistoryBackend {
	case config.BackendPostgres:
		history = pg
	case config.BackendRedis:
		history = redisstore.New(redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB))
	default:
		history = repository.NewMemoryHistory()
	}
	return store, history, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		// Calculate average GC pause time
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics copies service stats into gauges.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if entries, ok := stats["dedupeEntries"].(int64); ok {
		metrics.UpdateDedupeEntries(entries)
	}

	if records, ok := stats["historyRecords"].(int); ok {
		metrics.UpdateHistoryRecords(records)
	}
}
