// Package task holds the benchmark task: validated metadata plus, for every
// seed, the X and Y samples drawn with that seed. A Task is immutable once
// constructed; accessors hand out copies.
package task

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/ahrav/mibench/internal/domain"
)

// Samples are the points drawn for one seed. X has NSamples rows and DimX
// columns; Y has NSamples rows and DimY columns.
type Samples struct {
	X *mat.Dense
	Y *mat.Dense
}

// Task is a set of samples from one distribution with known mutual
// information.
type Task struct {
	metadata domain.TaskMetadata
	seeds    []int64
	samples  map[int64]Samples
}

// New builds a task from metadata and per-seed samples. seeds fixes the
// iteration order and must list every key of samples exactly once.
// The samples are deep-copied.
//
// Returns an error wrapping domain.ErrMetadataValidation for invalid metadata,
// domain.ErrInvalidParameter for empty or duplicate seeds, and
// domain.ErrCorruptData when a matrix shape disagrees with the metadata.
func New(metadata domain.TaskMetadata, seeds []int64, samples map[int64]Samples) (*Task, error) {
	return build(metadata, seeds, samples, true)
}

func build(metadata domain.TaskMetadata, seeds []int64, samples map[int64]Samples, copyData bool) (*Task, error) {
	if err := metadata.Validate(); err != nil {
		return nil, err
	}
	if err := checkSeeds(seeds); err != nil {
		return nil, err
	}
	if len(samples) != len(seeds) {
		return nil, fmt.Errorf("%w: %d seeds but samples for %d", domain.ErrCorruptData, len(seeds), len(samples))
	}

	owned := make(map[int64]Samples, len(seeds))
	for _, seed := range seeds {
		s, ok := samples[seed]
		if !ok {
			return nil, fmt.Errorf("%w: no samples for seed %d", domain.ErrCorruptData, seed)
		}
		if err := checkShape(seed, "X", s.X, metadata.NSamples, metadata.DimX); err != nil {
			return nil, err
		}
		if err := checkShape(seed, "Y", s.Y, metadata.NSamples, metadata.DimY); err != nil {
			return nil, err
		}
		if copyData {
			s = Samples{X: mat.DenseCopyOf(s.X), Y: mat.DenseCopyOf(s.Y)}
		}
		owned[seed] = s
	}

	return &Task{
		metadata: metadata.Clone(),
		seeds:    slices.Clone(seeds),
		samples:  owned,
	}, nil
}

func checkSeeds(seeds []int64) error {
	if len(seeds) == 0 {
		return fmt.Errorf("%w: at least one seed is required", domain.ErrInvalidParameter)
	}
	seen := make(map[int64]struct{}, len(seeds))
	for _, seed := range seeds {
		if _, dup := seen[seed]; dup {
			return fmt.Errorf("%w: duplicate seed %d", domain.ErrInvalidParameter, seed)
		}
		seen[seed] = struct{}{}
	}
	return nil
}

func checkShape(seed int64, name string, m *mat.Dense, rows, cols int) error {
	if m == nil {
		return fmt.Errorf("%w: seed %d: %s is missing", domain.ErrCorruptData, seed, name)
	}
	r, c := m.Dims()
	if r != rows || c != cols {
		return fmt.Errorf("%w: seed %d: %s is %dx%d, want %dx%d",
			domain.ErrCorruptData, seed, name, r, c, rows, cols)
	}
	return nil
}

// Metadata returns a copy of the task metadata.
func (t *Task) Metadata() domain.TaskMetadata { return t.metadata.Clone() }

func (t *Task) TaskID() string { return t.metadata.TaskID }

func (t *Task) DimX() int { return t.metadata.DimX }

func (t *Task) DimY() int { return t.metadata.DimY }

func (t *Task) NSamples() int { return t.metadata.NSamples }

func (t *Task) MITrue() float64 { return t.metadata.MITrue }

// Seeds returns the seeds in generation order.
func (t *Task) Seeds() []int64 { return slices.Clone(t.seeds) }

// HasSeed reports whether the task holds samples for seed.
func (t *Task) HasSeed(seed int64) bool {
	_, ok := t.samples[seed]
	return ok
}

// Samples returns copies of the X and Y samples for seed as row-major
// slices, one inner slice per point. ok is false for an unknown seed.
func (t *Task) Samples(seed int64) (x, y [][]float64, ok bool) {
	s, ok := t.samples[seed]
	if !ok {
		return nil, nil, false
	}
	return rows(s.X), rows(s.Y), true
}

// Matrices returns copies of the sample matrices for seed.
func (t *Task) Matrices(seed int64) (Samples, bool) {
	s, ok := t.samples[seed]
	if !ok {
		return Samples{}, false
	}
	return Samples{X: mat.DenseCopyOf(s.X), Y: mat.DenseCopyOf(s.Y)}, true
}

func rows(m *mat.Dense) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range r {
		out[i] = make([]float64, c)
		mat.Row(out[i], i, m)
	}
	return out
}

// Equal reports whether two tasks have equal metadata, the same seeds in the
// same order, and samples that agree element-wise within tol. A zero tol
// demands identical values.
func (t *Task) Equal(other *Task, tol float64) bool {
	if t == nil || other == nil {
		return t == other
	}
	if !t.metadata.Equal(other.metadata) || !slices.Equal(t.seeds, other.seeds) {
		return false
	}
	for _, seed := range t.seeds {
		a, b := t.samples[seed], other.samples[seed]
		if !denseEqual(a.X, b.X, tol) || !denseEqual(a.Y, b.Y, tol) {
			return false
		}
	}
	return true
}

func denseEqual(a, b *mat.Dense, tol float64) bool {
	if tol == 0 {
		return mat.Equal(a, b)
	}
	return mat.EqualApprox(a, b, tol)
}
