// Package domain provides the core value types shared by the benchmark
// pipeline: task metadata describing a sampled benchmark task, the results
// produced by running estimators against it, and the sentinel errors that
// every layer wraps. The types carry validator struct tags so that the same
// invariants are enforced when a value is constructed in memory and when it
// is read back from disk.
package domain

import (
	"fmt"
	"maps"
)

// TaskMetadata describes one benchmark task: the shape of its samples and the
// analytically computed ground-truth mutual information.
type TaskMetadata struct {
	// TaskID identifies the task within a suite. It doubles as the directory
	// name when a suite is saved, so path separators and the "." and ".."
	// entries are rejected.
	TaskID string `json:"task_id" yaml:"task_id" validate:"required,excludesall=/\\,ne=.,ne=.."`

	// DimX is the dimension of the X variable.
	DimX int `json:"dim_x" yaml:"dim_x" validate:"min=1"`

	// DimY is the dimension of the Y variable.
	DimY int `json:"dim_y" yaml:"dim_y" validate:"min=1"`

	// NSamples is the number of sample points drawn for every seed.
	NSamples int `json:"n_samples" yaml:"n_samples" validate:"min=1"`

	// MITrue is the closed-form mutual information of the sampled distribution.
	MITrue float64 `json:"mi_true" yaml:"mi_true" validate:"min=0,finite"`

	// TaskParams records the generator parameters the task was built from,
	// e.g. degrees of freedom or the spiral speed.
	TaskParams map[string]any `json:"task_params,omitempty" yaml:"task_params,omitempty"`
}

// NewTaskMetadata builds metadata and validates it.
// Returns an error wrapping ErrMetadataValidation if any field is out of range.
func NewTaskMetadata(taskID string, dimX, dimY, nSamples int, miTrue float64) (TaskMetadata, error) {
	m := TaskMetadata{
		TaskID:   taskID,
		DimX:     dimX,
		DimY:     dimY,
		NSamples: nSamples,
		MITrue:   miTrue,
	}
	if err := m.Validate(); err != nil {
		return TaskMetadata{}, err
	}
	return m, nil
}

// Validate checks the metadata invariants.
// Returns nil if valid, or an error wrapping ErrMetadataValidation.
func (m TaskMetadata) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("%w: %w", ErrMetadataValidation, err)
	}
	return nil
}

// DimTotal returns the dimension of the joint (X, Y) vector.
func (m TaskMetadata) DimTotal() int { return m.DimX + m.DimY }

// WithTaskParams returns a copy of the metadata carrying the given parameters.
func (m TaskMetadata) WithTaskParams(params map[string]any) TaskMetadata {
	m.TaskParams = cloneParams(params)
	return m
}

// Clone returns a copy that does not share the parameter map.
func (m TaskMetadata) Clone() TaskMetadata {
	m.TaskParams = cloneParams(m.TaskParams)
	return m
}

// Equal reports whether two metadata records describe the same task.
// Task parameters are compared by their printed form because numeric values
// may change Go type when they pass through a YAML file (2.0 reads back as 2).
func (m TaskMetadata) Equal(other TaskMetadata) bool {
	if m.TaskID != other.TaskID || m.DimX != other.DimX || m.DimY != other.DimY ||
		m.NSamples != other.NSamples || m.MITrue != other.MITrue {
		return false
	}
	return maps.EqualFunc(m.TaskParams, other.TaskParams, func(a, b any) bool {
		return fmt.Sprint(a) == fmt.Sprint(b)
	})
}
