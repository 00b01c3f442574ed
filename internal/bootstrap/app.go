package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/ses9133/pointpay/internal/infrastructure/config"
	"github.com/ses9133/pointpay/internal/infrastructure/observability"
	infraRedis "github.com/ses9133/pointpay/internal/infrastructure/redis"
	"github.com/ses9133/pointpay/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// App bundles the shared infrastructure a binary needs before it can wire
// its own services: config, logging, tracing, metrics, postgres and redis.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	Metrics *observability.Metrics
}

// New loads configuration and brings up the infrastructure in dependency
// order. Tracing failures are logged and skipped; database and redis
// failures abort startup.
func New(ctx context.Context, serviceName string, metricsNamespace string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.InitLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.Info().Str("service", serviceName).Str("instance", cfg.InstanceID).Msg("starting")

	if cfg.Observability.EnableTracing {
		tp, err := observability.InitTracer(serviceName, cfg.Observability.JaegerEndpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("tracer init failed, continuing without tracing")
		} else {
			go func() {
				<-ctx.Done()
				observability.Shutdown(context.Background(), tp)
			}()
			logger.Info().Str("endpoint", cfg.Observability.JaegerEndpoint).Msg("tracing enabled")
		}
	}

	metrics := observability.NewMetrics(metricsNamespace, nil)

	pool, err := postgres.NewPool(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info().Str("host", cfg.Database.Host).Msg("postgres connected")

	redisClient, err := infraRedis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("redis connected")

	return &App{
		Config:  cfg,
		Logger:  logger,
		Pool:    pool,
		Redis:   redisClient,
		Metrics: metrics,
	}, nil
}

// Close releases connections in reverse startup order.
func (a *App) Close() {
	if err := a.Redis.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("redis close")
	}
	a.Pool.Close()
	a.Logger.Info().Msg("shutdown complete")
}
