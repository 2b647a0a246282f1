package domain

import "fmt"

// RunResult keeps the output of a single estimator run on one seed of a task.
type RunResult struct {
	// RunID uniquely identifies this run so result stores can deduplicate
	// records written twice by a retried activity.
	RunID string `json:"run_id,omitempty" yaml:"run_id,omitempty" validate:"omitempty,uuid"`

	// TaskID references TaskMetadata.TaskID of the task that was estimated.
	TaskID string `json:"task_id" yaml:"task_id" validate:"required"`

	// Seed selects the sample set within the task.
	Seed int64 `json:"seed" yaml:"seed"`

	// EstimatorID names the estimator and, by convention, its configuration.
	EstimatorID string `json:"estimator_id" yaml:"estimator_id" validate:"required"`

	// MIEstimate is the estimate returned by the estimator. Estimators may
	// legitimately return small negative values, so only finiteness is checked.
	MIEstimate float64 `json:"mi_estimate" yaml:"mi_estimate" validate:"finite"`

	// TimeInSeconds is the wall-clock duration of the estimator call.
	TimeInSeconds *float64 `json:"time_in_seconds,omitempty" yaml:"time_in_seconds,omitempty" validate:"omitempty,min=0"`

	// EstimatorParams holds free-form estimator configuration.
	EstimatorParams map[string]any `json:"estimator_params,omitempty" yaml:"estimator_params,omitempty"`
}

// Validate checks if the run result meets all requirements.
// Returns nil if valid, or a validation error describing the first constraint violation.
func (r RunResult) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid run result: %w", err)
	}
	return nil
}

// Key returns the (task, seed, estimator) triple identifying the run.
func (r RunResult) Key() string {
	return fmt.Sprintf("%s/%d/%s", r.TaskID, r.Seed, r.EstimatorID)
}
