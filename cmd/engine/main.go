package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adlattice/bid-decision-engine/internal/infrastructure/cache"
	"github.com/adlattice/bid-decision-engine/internal/infrastructure/config"
	"github.com/adlattice/bid-decision-engine/internal/infrastructure/predictor"
	"github.com/adlattice/bid-decision-engine/internal/infrastructure/repository"
	"github.com/adlattice/bid-decision-engine/internal/infrastructure/telemetry"
	"github.com/adlattice/bid-decision-engine/internal/metrics"
	"github.com/adlattice/bid-decision-engine/internal/service/decision"
	"github.com/adlattice/bid-decision-engine/internal/service/fraud"
	"github.com/adlattice/bid-decision-engine/internal/service/insights"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := telemetry.SetupLogger(cfg.LogLevel)
	if err != nil {
		slog.Error("failed to setup logger", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		slog.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting bid decision engine",
		"version", cfg.Version,
		"environment", cfg.Environment,
		"backend", cfg.Engine.Backend,
		"port", cfg.Server.Port)

	zapLogger, err := telemetry.SetupZapLogger(cfg.Environment)
	if err != nil {
		return fmt.Errorf("setting up zap logger: %w", err)
	}
	defer zapLogger.Sync()

	provider, err := telemetry.InitializeOpenTelemetry(ctx, &telemetry.Config{
		ServiceName:    "bid-decision-engine",
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SamplingRate:   cfg.Telemetry.SamplingRate,
		ExportTimeout:  30 * time.Second,
		BatchTimeout:   5 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("parsing database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	repo := repository.NewBidEventRepository(pool)

	var store cache.EventStore = repo
	if cfg.Redis.URL != "" {
		client, err := cache.NewRedisClient(cfg.Redis, zapLogger)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer client.Close()
		store = cache.NewRecentBidsCache(repo, client, cfg.Redis.TTL, zapLogger)
	}

	backend, err := predictor.New(cfg.Engine, zapLogger)
	if err != nil {
		return fmt.Errorf("creating prediction backend: %w", err)
	}

	registry, err := metrics.NewRegistry("bid-decision-engine")
	if err != nil {
		return fmt.Errorf("creating metrics registry: %w", err)
	}

	decisionSvc := decision.NewService(store, backend, registry, logger,
		cfg.Engine.HistoryLimit, cfg.Engine.BackendTimeout, cfg.Engine.DefaultCountry)

	fraudSvc := fraud.NewService(backend, registry, logger,
		cfg.Fraud.Thresholds(), cfg.Engine.BackendTimeout)

	insightSvc := insights.NewService(store, backend, registry, logger,
		cfg.Engine.BackendTimeout)

	worker := newWorker(repo, store, fraudSvc, insightSvc, logger,
		cfg.Fraud.ScanInterval, cfg.Engine.HistoryLimit)
	go worker.run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/v1/decide", instrumentHandler("decide", newDecideHandler(decisionSvc, logger)))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	return nil
}
