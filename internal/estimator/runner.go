package estimator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ahrav/mibench/internal/domain"
	"github.com/ahrav/mibench/internal/metrics"
	"github.com/ahrav/mibench/internal/task"
)

// Runner defaults.
const (
	DefaultTimeout = 10 * time.Minute
	DefaultBurst   = 1
)

// RunnerConfig bounds estimator runs.
type RunnerConfig struct {
	// Timeout caps a single Estimate call. Zero means DefaultTimeout.
	Timeout time.Duration

	// RatePerSecond limits how many runs may start per second across the
	// runner. Zero or negative disables the limit.
	RatePerSecond float64

	// Burst is the limiter bucket size. Zero means DefaultBurst.
	Burst int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerMetrics sets the metrics collector.
func WithRunnerMetrics(m metrics.Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithRunnerLogger sets the logger.
func WithRunnerLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// Runner invokes estimators on task seeds and records the outcome as a
// domain.RunResult. It is safe for concurrent use.
type Runner struct {
	timeout time.Duration
	limiter *rate.Limiter
	metrics metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewRunner creates a runner.
func NewRunner(cfg RunnerConfig, opts ...RunnerOption) *Runner {
	r := &Runner{
		timeout: cfg.Timeout,
		metrics: metrics.NewNoOp(),
		logger:  slog.Default(),
		now:     time.Now,
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = DefaultBurst
		}
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run estimates MI on one seed of t.
//
// Returns an error wrapping domain.ErrUnknownSeed if t has no such seed and
// domain.ErrEstimatorFailed if the estimator errors, times out or returns a
// non-finite value.
func (r *Runner) Run(ctx context.Context, t *task.Task, seed int64, est Estimator) (domain.RunResult, error) {
	return r.RunWithTimeout(ctx, t, seed, est, 0)
}

// RunWithTimeout is Run with a per-call deadline. The estimator gets the
// shorter of timeout and the runner's configured timeout; zero or negative
// leaves the configured one.
func (r *Runner) RunWithTimeout(
	ctx context.Context, t *task.Task, seed int64, est Estimator, timeout time.Duration,
) (domain.RunResult, error) {
	limit := r.timeout
	if timeout > 0 {
		limit = min(limit, timeout)
	}
	x, y, ok := t.Samples(seed)
	if !ok {
		return domain.RunResult{}, fmt.Errorf("%w: task %s has no seed %d", domain.ErrUnknownSeed, t.TaskID(), seed)
	}
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return domain.RunResult{}, fmt.Errorf("wait for run slot: %w", err)
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	start := r.now()
	estimate, err := est.Estimate(runCtx, x, y)
	elapsed := r.now().Sub(start)

	tags := map[string]string{"estimator_id": est.ID(), "task_id": t.TaskID()}
	if err == nil && (math.IsNaN(estimate) || math.IsInf(estimate, 0)) {
		err = fmt.Errorf("non-finite estimate %v", estimate)
	}
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("timed out after %s: %w", limit, err)
		}
		tags["status"] = "error"
		r.metrics.IncrementCounter(metrics.EstimatorRuns, tags, 1)
		r.logger.Warn("estimator run failed",
			"task_id", t.TaskID(),
			"seed", seed,
			"estimator_id", est.ID(),
			"error", err,
		)
		return domain.RunResult{}, fmt.Errorf("%w: %s on %s seed %d: %w",
			domain.ErrEstimatorFailed, est.ID(), t.TaskID(), seed, err)
	}

	seconds := elapsed.Seconds()
	result := domain.RunResult{
		RunID:           uuid.NewString(),
		TaskID:          t.TaskID(),
		Seed:            seed,
		EstimatorID:     est.ID(),
		MIEstimate:      estimate,
		TimeInSeconds:   &seconds,
		EstimatorParams: est.Params(),
	}
	if err := result.Validate(); err != nil {
		return domain.RunResult{}, err
	}

	tags["status"] = "ok"
	r.metrics.IncrementCounter(metrics.EstimatorRuns, tags, 1)
	r.metrics.RecordHistogram(metrics.EstimatorDuration, tags, seconds)
	r.metrics.RecordHistogram(metrics.EstimatorAbsoluteError, tags, math.Abs(estimate-t.MITrue()))
	r.logger.Info("estimator run completed",
		"task_id", t.TaskID(),
		"seed", seed,
		"estimator_id", est.ID(),
		"mi_estimate", estimate,
		"mi_true", t.MITrue(),
		"duration_ms", elapsed.Milliseconds(),
	)
	return result, nil
}

// RunAll runs est on every seed of t in seed order and stops at the first
// failure, returning the results collected so far.
func (r *Runner) RunAll(ctx context.Context, t *task.Task, est Estimator) ([]domain.RunResult, error) {
	results := make([]domain.RunResult, 0, len(t.Seeds()))
	for _, seed := range t.Seeds() {
		res, err := r.Run(ctx, t, seed, est)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
