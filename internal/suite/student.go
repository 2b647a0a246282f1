package suite

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/ahrav/mibench/internal/sampler"
	"github.com/ahrav/mibench/internal/task"
)

// Default dispersion of the sparse Student-t tasks.
const (
	SparseDispersionSignal = 0.8
	SparseDispersionNoise  = 0.1
	sparseSignalPairs      = 2
)

// StudentUniform generates a Student-t task whose dispersion has unit
// diagonal and 0.5 everywhere else.
func StudentUniform(ctx context.Context, dimX, dimY int, df float64, nSamples, nSeeds int, opts ...task.Option) (*task.Task, error) {
	s, err := sampler.NewSplitStudentT(dimX, dimY, nil, sampler.UniformDispersion(dimX+dimY, 0.5), df)
	if err != nil {
		return nil, fmt.Errorf("student-uniform sampler: %w", err)
	}
	id := fmt.Sprintf("student-uniform-%d-%d-%s-%d", dimX, dimY, formatFloat(df), nSamples)
	opts = append(slices.Clip(opts), task.WithTaskParams(map[string]any{"degrees_of_freedom": df}))
	return task.Generate(ctx, s, nSamples, SeedRange(nSeeds), id, opts...)
}

// StudentSparse generates a Student-t task in which only the first two
// (X_i, Y_i) pairs carry signal, on top of weak within-variable noise.
func StudentSparse(ctx context.Context, dimX, dimY int, df float64, nSamples, nSeeds int, opts ...task.Option) (*task.Task, error) {
	dispersion, err := sampler.ParametrisedCorrelationMatrix(
		dimX, dimY, min(sparseSignalPairs, dimX, dimY),
		SparseDispersionSignal, SparseDispersionNoise, SparseDispersionNoise,
	)
	if err != nil {
		return nil, fmt.Errorf("student-sparse dispersion: %w", err)
	}
	s, err := sampler.NewSplitStudentT(dimX, dimY, nil, dispersion, df)
	if err != nil {
		return nil, fmt.Errorf("student-sparse sampler: %w", err)
	}
	id := fmt.Sprintf("student-sparse-%d-%d-%s-%d", dimX, dimY, formatFloat(df), nSamples)
	opts = append(slices.Clip(opts), task.WithTaskParams(map[string]any{
		"dispersion_signal":  SparseDispersionSignal,
		"dispersion_noise":   SparseDispersionNoise,
		"degrees_of_freedom": df,
	}))
	return task.Generate(ctx, s, nSamples, SeedRange(nSeeds), id, opts...)
}

type studentSpec struct {
	dimX, dimY int
	df         float64
}

var (
	// df=2 has no covariance; larger df do.
	studentUniformGrid = []studentSpec{
		{5, 5, 2}, {5, 5, 3}, {5, 5, 5}, {5, 5, 10}, {5, 5, 30},
		{2, 2, 5}, {25, 25, 5},
	}
	studentSparseGrid = []studentSpec{
		{3, 3, 5}, {2, 5, 5}, {5, 5, 5},
	}
)

// StudentSuite generates the uniform and sparse Student-t grids.
func StudentSuite(ctx context.Context, settings Settings) ([]*task.Task, error) {
	n := settings.samples(DefaultStudentSamples)
	tasks := make([]*task.Task, 0, len(studentUniformGrid)+len(studentSparseGrid))
	for _, g := range studentUniformGrid {
		t, err := StudentUniform(ctx, g.dimX, g.dimY, g.df, n, settings.Seeds, settings.TaskOptions...)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	for _, g := range studentSparseGrid {
		t, err := StudentSparse(ctx, g.dimX, g.dimY, g.df, n, settings.Seeds, settings.TaskOptions...)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
