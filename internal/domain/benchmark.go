package domain

import "fmt"

// BenchmarkRequest describes a batch of estimator runs over persisted tasks.
// Every estimator is run on every seed of every task.
type BenchmarkRequest struct {
	// TaskDirs are directories produced by saving a task.
	TaskDirs []string `json:"task_dirs" validate:"required,min=1,dive,required"`

	// EstimatorIDs name estimators registered with the worker.
	EstimatorIDs []string `json:"estimator_ids" validate:"required,min=1,dive,required"`

	// TimeoutSeconds bounds a single estimator run. Workers apply the shorter
	// of this and their own configured runner timeout.
	TimeoutSeconds int `json:"timeout_seconds" validate:"min=1,max=86400"`

	// MaxAttempts bounds retries of a failed estimator run.
	MaxAttempts int32 `json:"max_attempts" validate:"min=0,max=10"`
}

// Validate checks if the benchmark request meets all requirements.
// Returns nil if valid, or a validation error describing the first constraint violation.
func (r BenchmarkRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid benchmark request: %w", err)
	}
	return nil
}

// RunEstimatorInput is the input of a single estimator run activity.
type RunEstimatorInput struct {
	TaskDir     string `json:"task_dir" validate:"required"`
	Seed        int64  `json:"seed"`
	EstimatorID string `json:"estimator_id" validate:"required"`

	// TimeoutSeconds bounds the estimator call. Zero leaves the worker's
	// runner timeout.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" validate:"min=0,max=86400"`
}

// Validate checks if the run input meets all requirements.
func (in RunEstimatorInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("invalid run input: %w", err)
	}
	return nil
}

// RunFailure records an estimator run that did not produce a result.
type RunFailure struct {
	TaskDir     string `json:"task_dir"`
	Seed        int64  `json:"seed"`
	EstimatorID string `json:"estimator_id"`
	Error       string `json:"error"`
}

// BenchmarkReport collects the outcome of a BenchmarkRequest.
type BenchmarkReport struct {
	Results  []RunResult  `json:"results"`
	Failures []RunFailure `json:"failures,omitempty"`
}

// Succeeded reports whether every requested run produced a result.
func (r BenchmarkReport) Succeeded() bool { return len(r.Failures) == 0 }
