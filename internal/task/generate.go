package task

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ahrav/mibench/internal/domain"
	"github.com/ahrav/mibench/internal/metrics"
	"github.com/ahrav/mibench/internal/sampler"
)

// Option configures Generate.
type Option func(*generateOptions)

type generateOptions struct {
	workers int
	params  map[string]any
	metrics metrics.Metrics
	logger  *slog.Logger
}

// WithWorkers bounds the number of seeds sampled concurrently.
// Values below one fall back to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *generateOptions) { o.workers = n }
}

// WithTaskParams records generator parameters in the task metadata.
func WithTaskParams(params map[string]any) Option {
	return func(o *generateOptions) { o.params = params }
}

// WithMetrics sets the collector for generation metrics.
func WithMetrics(m metrics.Metrics) Option {
	return func(o *generateOptions) { o.metrics = m }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *generateOptions) { o.logger = l }
}

// Generate draws nSamples points from s for every seed and packages them with
// metadata whose MITrue is the sampler's closed-form mutual information.
// Seeds are sampled in parallel; each seed's samples depend only on the seed,
// so the result does not depend on the worker count.
//
// Returns an error wrapping domain.ErrInvalidParameter for nSamples <= 0 or
// empty or duplicate seeds, domain.ErrMetadataValidation for an invalid task
// id, or the first sampling error. No task is returned on failure.
func Generate(
	ctx context.Context,
	s sampler.Sampler,
	nSamples int,
	seeds []int64,
	taskID string,
	opts ...Option,
) (*Task, error) {
	o := generateOptions{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	if o.metrics == nil {
		o.metrics = metrics.NewNoOp()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	if nSamples <= 0 {
		return nil, fmt.Errorf("%w: n_samples must be positive, got %d", domain.ErrInvalidParameter, nSamples)
	}
	if err := checkSeeds(seeds); err != nil {
		return nil, err
	}
	metadata, err := domain.NewTaskMetadata(taskID, s.DimX(), s.DimY(), nSamples, s.MutualInformation())
	if err != nil {
		return nil, err
	}
	if o.params != nil {
		metadata = metadata.WithTaskParams(o.params)
	}

	start := time.Now()
	drawn := make([]Samples, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, seed := range seeds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			x, y, err := s.Sample(nSamples, seed)
			if err != nil {
				return fmt.Errorf("sample seed %d: %w", seed, err)
			}
			drawn[i] = Samples{X: x, Y: y}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	samples := make(map[int64]Samples, len(seeds))
	for i, seed := range seeds {
		samples[seed] = drawn[i]
	}
	t, err := build(metadata, seeds, samples, false)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	tags := map[string]string{"task_id": taskID}
	o.metrics.IncrementCounter(metrics.TasksGenerated, tags, 1)
	o.metrics.IncrementCounter(metrics.SamplesDrawn, tags, float64(nSamples*len(seeds)))
	o.metrics.RecordHistogram(metrics.GenerationDuration, tags, elapsed.Seconds())
	o.logger.Info("task generated",
		"task_id", taskID,
		"dim_x", metadata.DimX,
		"dim_y", metadata.DimY,
		"n_samples", nSamples,
		"seeds", len(seeds),
		"mi_true", metadata.MITrue,
		"duration_ms", elapsed.Milliseconds(),
	)
	return t, nil
}
