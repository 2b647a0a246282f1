package task

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/ahrav/mibench/internal/domain"
	"github.com/ahrav/mibench/internal/taskdir"
)

// Save writes the task to the directory at path.
// Returns an error wrapping domain.ErrAlreadyExists if path already holds a
// task and existOK is false.
func (t *Task) Save(path string, existOK bool) error {
	return taskdir.New(path).Save(t.metadata, t.Table(), existOK)
}

// Table flattens the samples into one row per point, grouped by seed in
// seed order.
func (t *Task) Table() *taskdir.Table {
	tbl := taskdir.NewTable(t.DimX(), t.DimY())
	values := make([]float64, t.DimX()+t.DimY())
	for _, seed := range t.seeds {
		s := t.samples[seed]
		for i := range t.NSamples() {
			mat.Row(values[:t.DimX()], i, s.X)
			mat.Row(values[t.DimX():], i, s.Y)
			tbl.Append(seed, values)
		}
	}
	return tbl
}

// Load reads a task saved with Save. Seeds keep the order in which they first
// appear in the samples table.
//
// Returns an error wrapping domain.ErrMetadataValidation for invalid metadata
// and domain.ErrCorruptData when the table's columns or per-seed row counts
// disagree with the metadata.
func Load(path string) (*Task, error) {
	dir := taskdir.New(path)
	metadata, err := dir.LoadMetadata()
	if err != nil {
		return nil, err
	}
	tbl, err := dir.LoadTable()
	if err != nil {
		return nil, err
	}
	return FromTable(metadata, tbl)
}

// FromTable rebuilds a task from metadata and its flattened samples.
func FromTable(metadata domain.TaskMetadata, tbl *taskdir.Table) (*Task, error) {
	want := append([]string{taskdir.SeedColumn}, taskdir.ValueColumns(metadata.DimX, metadata.DimY)...)
	if len(tbl.Columns) != len(want) {
		return nil, fmt.Errorf("%w: expected %d columns for dim_x=%d dim_y=%d, got %d",
			domain.ErrCorruptData, len(want), metadata.DimX, metadata.DimY, len(tbl.Columns))
	}
	if !slices.Equal(tbl.Columns, want) {
		return nil, fmt.Errorf("%w: unexpected columns %v", domain.ErrCorruptData, tbl.Columns)
	}

	var seeds []int64
	grouped := make(map[int64][]taskdir.Row)
	for _, row := range tbl.Rows {
		if _, ok := grouped[row.Seed]; !ok {
			seeds = append(seeds, row.Seed)
		}
		grouped[row.Seed] = append(grouped[row.Seed], row)
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("%w: samples table has no rows", domain.ErrCorruptData)
	}

	samples := make(map[int64]Samples, len(seeds))
	for _, seed := range seeds {
		group := grouped[seed]
		if len(group) != metadata.NSamples {
			return nil, fmt.Errorf("%w: seed %d has %d rows, want %d",
				domain.ErrCorruptData, seed, len(group), metadata.NSamples)
		}
		x := mat.NewDense(metadata.NSamples, metadata.DimX, nil)
		y := mat.NewDense(metadata.NSamples, metadata.DimY, nil)
		for i, row := range group {
			x.SetRow(i, row.Values[:metadata.DimX])
			y.SetRow(i, row.Values[metadata.DimX:])
		}
		samples[seed] = Samples{X: x, Y: y}
	}
	return build(metadata, seeds, samples, false)
}
