package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/ahrav/mibench/internal/benchmark"
	"github.com/ahrav/mibench/internal/config"
	"github.com/ahrav/mibench/internal/estimator"
	"github.com/ahrav/mibench/internal/metrics"
	"github.com/ahrav/mibench/internal/results"
	"github.com/ahrav/mibench/pkg/activity"
	"github.com/ahrav/mibench/pkg/events"
)

// InitializeResultStore creates the configured result store. The Redis
// backend is pinged so a bad address fails at start-up rather than on the
// first run.
func InitializeResultStore(ctx context.Context, cfg config.ResultsConfig) (results.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		return results.NewMemoryStore(), nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:        cfg.RedisAddr,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			DialTimeout: cfg.DialTimeout,
		})
		pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return results.NewRedisStore(client, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown results backend %q", cfg.Backend)
	}
}

// InitializeRegistry registers the built-in Gaussian estimator and every
// configured command estimator.
func InitializeRegistry(cfgs []config.EstimatorConfig) (*estimator.Registry, error) {
	registry, err := estimator.NewRegistry(estimator.NewGaussian())
	if err != nil {
		return nil, err
	}
	for _, c := range cfgs {
		cmd, err := estimator.NewCommand(c.ID, c.Command, c.Params)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(cmd); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// InitializeActivities builds the benchmark activities from configuration.
func InitializeActivities(
	ctx context.Context,
	cfg *config.Config,
	m metrics.Metrics,
	logger *slog.Logger,
) (*benchmark.Activities, error) {
	store, err := InitializeResultStore(ctx, cfg.Results)
	if err != nil {
		return nil, err
	}
	registry, err := InitializeRegistry(cfg.Estimators)
	if err != nil {
		return nil, err
	}
	runner := estimator.NewRunner(estimator.RunnerConfig{
		Timeout:       cfg.Runner.Timeout,
		RatePerSecond: cfg.Runner.RatePerSecond,
		Burst:         cfg.Runner.Burst,
	}, estimator.WithRunnerMetrics(m), estimator.WithRunnerLogger(logger))

	base := activity.NewBaseActivities(events.NewLogEventSink(logger))
	return benchmark.NewActivities(base, registry, runner, store), nil
}
