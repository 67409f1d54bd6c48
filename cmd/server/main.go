package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/reviewpulse/internal/adapter/httpserver"
	"github.com/pscheid92/reviewpulse/internal/adapter/inference"
	"github.com/pscheid92/reviewpulse/internal/adapter/metrics"
	"github.com/pscheid92/reviewpulse/internal/adapter/postgres"
	"github.com/pscheid92/reviewpulse/internal/adapter/redis"
	"github.com/pscheid92/reviewpulse/internal/app"
	"github.com/pscheid92/reviewpulse/internal/aspect"
	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/platform/config"
	"github.com/pscheid92/reviewpulse/internal/platform/logging"
	"github.com/pscheid92/reviewpulse/internal/platform/retry"
	"github.com/pscheid92/reviewpulse/internal/platform/version"
)

const (
	redisBreakerDelay   = 15 * time.Second
	cacheEvictInterval  = 1 * time.Minute
	shutdownGracePeriod = 10 * time.Second
)

func runGracefulShutdown(srv *httpserver.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func logRetry(dependency string) func(int, error, time.Duration) {
	return func(attempt int, err error, backoff time.Duration) {
		slog.Warn("Dependency not ready, retrying",
			"dependency", dependency,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
	}
}

func setupDB(ctx context.Context, cfg *config.Config, m *metrics.DBMetrics) *pgxpool.Pool {
	policy := retry.Startup
	policy.OnRetry = logRetry("postgres")

	db, err := retry.Do(ctx, policy, retry.UnlessCanceled, func(ctx context.Context) (*pgxpool.Pool, error) {
		return postgres.Connect(ctx, cfg.DatabaseURL, m)
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return db
}

// setupRedis returns nil when no shared cache is configured.
func setupRedis(ctx context.Context, cfg *config.Config, cm *metrics.CacheMetrics, rm *metrics.RedisMetrics) (*goredis.Client, *redis.CircuitBreakerHook) {
	if !cfg.CacheEnabled() {
		slog.Info("REDIS_URL not set, prediction cache is in-memory only")
		return nil, nil
	}

	policy := retry.Startup
	policy.OnRetry = logRetry("redis")

	// The breaker is added first so rejected commands never reach the metrics hook.
	breaker := redis.NewCircuitBreakerHook(cm, redisBreakerDelay)
	observer := redis.NewMetricsHook(rm)
	client, err := retry.Do(ctx, policy, retry.UnlessCanceled, func(ctx context.Context) (*goredis.Client, error) {
		return redis.NewClient(ctx, cfg.RedisURL, breaker, observer)
	})
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client, breaker
}

func setupInference(cfg *config.Config, m *metrics.InferenceMetrics) *inference.Client {
	client, err := inference.NewClient(inference.Config{
		BaseURL:   cfg.ModelURL,
		ModelName: cfg.ModelName,
		Timeout:   cfg.ModelTimeout,
	}, m)
	if err != nil {
		slog.Error("Failed to create inference client", "error", err)
		os.Exit(1)
	}
	return client
}

// healthChecks gates readiness on Postgres and Redis connectivity. Breaker
// states are optional: every instance shares the same upstreams, so failing
// readiness on them would empty the pool while catalog endpoints still work.
func healthChecks(pool *pgxpool.Pool, redisClient *goredis.Client, redisBreaker *redis.CircuitBreakerHook, model *inference.Client) []httpserver.HealthCheck {
	checks := []httpserver.HealthCheck{
		{Name: "postgres", Check: pool.Ping},
		{Name: "migrations", Check: func(ctx context.Context) error { return postgres.SchemaCurrent(ctx, pool) }},
		{Name: "model_breaker", Check: model.Healthy, Optional: true},
	}
	if redisClient != nil {
		checks = append(checks,
			httpserver.HealthCheck{
				Name:  "redis",
				Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
			},
			httpserver.HealthCheck{Name: "redis_breaker", Check: redisBreaker.Healthy, Optional: true},
		)
	}
	return checks
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting",
		"env", cfg.AppEnv,
		"port", cfg.Port,
		"version", version.Get().Version,
		"aspect_schema", domain.DefaultSchema.ID,
	)

	reg := metrics.NewRegistry()
	metrics.RegisterBuildInfo(reg, domain.DefaultSchema.ID)
	dbMetrics := metrics.NewDBMetrics(reg)
	cacheMetrics := metrics.NewCacheMetrics(reg)
	redisMetrics := metrics.NewRedisMetrics(reg)
	inferenceMetrics := metrics.NewInferenceMetrics(reg)
	analysisMetrics := metrics.NewAnalysisMetrics(reg)

	ctx := context.Background()

	pool := setupDB(ctx, cfg, dbMetrics)
	defer pool.Close()

	redisClient, redisBreaker := setupRedis(ctx, cfg, cacheMetrics, redisMetrics)
	var sharedCache goredis.Cmdable
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		sharedCache = redisClient
	}

	predictionCache := redis.NewPredictionCache(sharedCache, cfg.PredictionMemCacheTTL, clock, cacheMetrics)
	stopEviction := predictionCache.StartEvictionTimer(cacheEvictInterval)
	defer stopEviction()

	modelClient := setupInference(cfg, inferenceMetrics)
	classifier := aspect.NewLogitClassifier(modelClient, modelClient, cfg.TokenizerMaxLength)
	cached := aspect.NewCachedClassifier(classifier, predictionCache, domain.DefaultSchema, cfg.PredictionCacheTTL)
	decoder := aspect.NewDecoder(domain.DefaultSchema, cached)

	appSvc := app.NewService(
		decoder,
		postgres.NewProductNameRepo(pool),
		postgres.NewProductRepo(pool),
		postgres.NewReviewRepo(pool),
		postgres.NewRatingRepo(pool),
		analysisMetrics,
	)

	srv := httpserver.NewServer(cfg, appSvc, domain.DefaultSchema, healthChecks(pool, redisClient, redisBreaker, modelClient), reg, clock)

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
