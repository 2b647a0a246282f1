package benchmark

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ahrav/mibench/internal/domain"
)

// Workflow tuning.
const (
	// DefaultMaxAttempts applies when a request leaves MaxAttempts at zero.
	DefaultMaxAttempts = 3

	listSeedsTimeout = time.Minute
	// runTimeoutSlack covers loading the task and storing the result on top
	// of the estimator's own budget.
	runTimeoutSlack = 30 * time.Second
)

// BenchmarkWorkflow runs every requested estimator on every seed of every
// task directory. Runs execute in parallel; a failed run is reported in the
// returned report rather than failing the workflow.
func BenchmarkWorkflow(ctx workflow.Context, req domain.BenchmarkRequest) (*domain.BenchmarkReport, error) {
	const currentVersion = 1
	_ = workflow.GetVersion(ctx, "benchmark.v", workflow.DefaultVersion, currentVersion)

	if err := req.Validate(); err != nil {
		return nil, temporal.NewNonRetryableApplicationError(
			"invalid benchmark request",
			"Validation",
			err,
		)
	}

	attempts := req.MaxAttempts
	if attempts == 0 {
		attempts = DefaultMaxAttempts
	}
	retry := &temporal.RetryPolicy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2.0,
		MaximumInterval:    time.Minute,
		MaximumAttempts:    attempts,
	}
	listCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: listSeedsTimeout,
		RetryPolicy:         retry,
	})
	runCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Duration(req.TimeoutSeconds)*time.Second + runTimeoutSlack,
		RetryPolicy:         retry,
	})

	logger := workflow.GetLogger(ctx)
	report := &domain.BenchmarkReport{}

	var a *Activities
	type pending struct {
		input  domain.RunEstimatorInput
		future workflow.Future
	}
	listed := make([]workflow.Future, len(req.TaskDirs))
	for i, dir := range req.TaskDirs {
		listed[i] = workflow.ExecuteActivity(listCtx, a.ListSeeds, dir)
	}

	var runs []pending
	for i, dir := range req.TaskDirs {
		var seeds []int64
		if err := listed[i].Get(ctx, &seeds); err != nil {
			logger.Warn("skipping task directory", "task_dir", dir, "error", err)
			for _, id := range req.EstimatorIDs {
				report.Failures = append(report.Failures, domain.RunFailure{
					TaskDir:     dir,
					EstimatorID: id,
					Error:       err.Error(),
				})
			}
			continue
		}
		for _, seed := range seeds {
			for _, id := range req.EstimatorIDs {
				in := domain.RunEstimatorInput{
					TaskDir:        dir,
					Seed:           seed,
					EstimatorID:    id,
					TimeoutSeconds: req.TimeoutSeconds,
				}
				runs = append(runs, pending{input: in, future: workflow.ExecuteActivity(runCtx, a.RunEstimator, in)})
			}
		}
	}

	for _, run := range runs {
		var res domain.RunResult
		if err := run.future.Get(ctx, &res); err != nil {
			report.Failures = append(report.Failures, domain.RunFailure{
				TaskDir:     run.input.TaskDir,
				Seed:        run.input.Seed,
				EstimatorID: run.input.EstimatorID,
				Error:       err.Error(),
			})
			continue
		}
		report.Results = append(report.Results, res)
	}

	logger.Info("benchmark finished",
		"tasks", len(req.TaskDirs),
		"results", len(report.Results),
		"failures", len(report.Failures))
	return report, nil
}
