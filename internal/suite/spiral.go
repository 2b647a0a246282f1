package suite

import (
	"context"
	"fmt"
	"slices"

	"github.com/ahrav/mibench/internal/sampler"
	"github.com/ahrav/mibench/internal/task"
)

// Defaults of the spiral invariance suite.
const (
	DefaultSpiralCorrelation = 0.8
	DefaultSpiralSamples     = 2000
)

// DefaultSpiralSpeeds are the spiral speeds swept when none are given.
var DefaultSpiralSpeeds = []float64{1e-2, 1, 2, 5, 10}

// SpiralInvariance generates a task whose X is a 2-dimensional Gaussian with
// X1 correlated to the scalar Y, then wound by a spiral of the given speed.
// The spiral is a diffeomorphism, so the ground-truth MI is that of the
// Gaussian and should not change with speed.
func SpiralInvariance(ctx context.Context, correlation float64, nSamples int, speed float64, nSeeds int, opts ...task.Option) (*task.Task, error) {
	covariance, err := sampler.ParametrisedCorrelationMatrix(2, 1, 1, correlation, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("spiral covariance: %w", err)
	}
	base, err := sampler.NewSplitMultinormal(2, 1, nil, covariance)
	if err != nil {
		return nil, fmt.Errorf("spiral base sampler: %w", err)
	}
	spiral, err := sampler.NewSpiral(2, speed)
	if err != nil {
		return nil, err
	}
	s, err := sampler.NewTransformed(base, spiral, nil)
	if err != nil {
		return nil, err
	}
	id := fmt.Sprintf("spiral-%s-%s-%d", formatFloat(correlation), formatFloat(speed), nSamples)
	opts = append(slices.Clip(opts), task.WithTaskParams(map[string]any{
		"correlation": correlation,
		"speed":       speed,
	}))
	return task.Generate(ctx, s, nSamples, SeedRange(nSeeds), id, opts...)
}

// SpiralSuite generates one spiral task per speed, in order.
func SpiralSuite(ctx context.Context, correlation float64, speeds []float64, settings Settings) ([]*task.Task, error) {
	if len(speeds) == 0 {
		speeds = DefaultSpiralSpeeds
	}
	n := settings.samples(DefaultSpiralSamples)
	tasks := make([]*task.Task, 0, len(speeds))
	for _, speed := range speeds {
		t, err := SpiralInvariance(ctx, correlation, n, speed, settings.Seeds, settings.TaskOptions...)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
