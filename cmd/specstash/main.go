package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/specstash/specstash/pkg/api"
	"github.com/specstash/specstash/pkg/config"
	"github.com/specstash/specstash/pkg/httputil"
	"github.com/specstash/specstash/pkg/metadata"
	"github.com/specstash/specstash/pkg/observability"
	"github.com/specstash/specstash/pkg/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	ctx := context.Background()

	health := observability.NewHealthChecker()

	var metrics *observability.Metrics
	registry := prometheus.NewRegistry()
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(registry)
	}

	var (
		meta   metadata.Store
		facade storage.Facade
		db     *sql.DB
	)

	backendLabel := "memory"
	switch cfg.Backend {
	case config.BackendAWS:
		backendLabel = "s3"
		db, err = metadata.OpenPostgres(cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns, cfg.Database.Timeout)
		if err != nil {
			logger.WithError(err).Error("failed to connect to postgres")
			os.Exit(1)
		}

		pgStore := metadata.NewPostgresStore(db)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			logger.WithError(err).Error("failed to ensure database schema")
			os.Exit(1)
		}
		meta = pgStore

		facade, err = storage.NewS3Facade(ctx, cfg.Storage)
		if err != nil {
			logger.WithError(err).Error("failed to initialize object storage")
			os.Exit(1)
		}
		logger.WithField("bucket", cfg.Storage.S3Bucket).Info("object storage initialized")

	default:
		meta = metadata.NewInMemoryStore()
		facade = storage.NewInMemoryFacade()
		logger.Warn("running with in-memory backends, data will not survive a restart")
	}

	if metrics != nil {
		facade = storage.NewInstrumentedFacade(facade, metrics, backendLabel)
	}

	health.AddCheck("metadata", true, meta.HealthCheck)
	health.AddCheck("storage", true, facade.HealthCheck)

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = metadata.NewRedisClient(cfg.Cache.RedisURL, cfg.Cache.Password, cfg.Cache.DB)
		if err != nil {
			logger.WithError(err).Error("failed to connect to redis")
			os.Exit(1)
		}
		meta = metadata.NewCachedStore(meta, redisClient, cfg.Cache.TTL, metrics)
		health.AddCheck("cache", false, func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
		logger.Info("metadata cache enabled")
	}

	statsCtx, stopStats := context.WithCancel(ctx)
	defer stopStats()
	if metrics != nil && db != nil {
		metrics.StartDBStatsCollector(statsCtx, db, 15*time.Second)
	}

	server := api.NewServer(meta, facade, logger, metrics)

	// Health and metrics on a separate listener for k8s probes.
	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, health)
	if cfg.Observability.MetricsEnabled {
		healthMux.Handle("/metrics", observability.Handler(registry))
	}
	healthSrv := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}
	go func() {
		logger.WithField("addr", healthSrv.Addr).Info("health listener starting")
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("health listener failed")
		}
	}()

	httpSrv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      httputil.MaxBytesMiddleware(cfg.Server.MaxBodyBytes)(server),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	go func() {
		logger.WithField("addr", httpSrv.Addr).Info("spec registry listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("server failed")
			os.Exit(1)
		}
	}()

	shutdown := observability.NewShutdownManager(logger, httpSrv, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(healthSrv.Shutdown)
	if db != nil {
		shutdown.RegisterShutdownFunc(func(context.Context) error { return db.Close() })
	}
	if redisClient != nil {
		shutdown.RegisterShutdownFunc(func(context.Context) error { return redisClient.Close() })
	}

	if err := shutdown.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("shutdown finished with errors")
		os.Exit(1)
	}
}
