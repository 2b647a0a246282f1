package config

import "time"

// Generation constants.
const (
	DefaultSeeds = 10
)

// Runner constants.
const (
	DefaultRunTimeout    = 10 * time.Minute
	DefaultRatePerSecond = 0 // unlimited
	DefaultBurst         = 1
)

// Temporal constants.
const (
	DefaultTemporalHostPort  = "localhost:7233"
	DefaultTemporalNamespace = "default"
	DefaultTaskQueue         = "mibench"
)

// Results constants.
const (
	BackendMemory      = "memory"
	BackendRedis       = "redis"
	DefaultRedisAddr   = "localhost:6379"
	DefaultResultTTL   = 0 // keep forever
	DefaultDialTimeout = 5 * time.Second
)

// Observability constants.
const (
	DefaultMetricsPort      = 9090
	DefaultMetricsNamespace = "mibench"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

// DefaultConfig returns a configuration that works on a developer machine:
// in-memory results, a local Temporal frontend and text logs.
func DefaultConfig() *Config {
	return &Config{
		Generation: GenerationConfig{
			Seeds:   DefaultSeeds,
			Workers: 0,
		},
		Runner: RunnerConfig{
			Timeout:       DefaultRunTimeout,
			RatePerSecond: DefaultRatePerSecond,
			Burst:         DefaultBurst,
		},
		Temporal: TemporalConfig{
			HostPort:  DefaultTemporalHostPort,
			Namespace: DefaultTemporalNamespace,
			TaskQueue: DefaultTaskQueue,
		},
		Results: ResultsConfig{
			Backend:     BackendMemory,
			RedisAddr:   DefaultRedisAddr,
			TTL:         DefaultResultTTL,
			DialTimeout: DefaultDialTimeout,
		},
		Observability: ObservabilityConfig{
			MetricsEnabled:   true,
			MetricsPort:      DefaultMetricsPort,
			MetricsNamespace: DefaultMetricsNamespace,
			LogLevel:         DefaultLogLevel,
			LogFormat:        DefaultLogFormat,
		},
	}
}
