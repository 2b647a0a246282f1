// Package benchmark runs estimators over persisted tasks as a Temporal
// workflow. One activity invocation is one estimator on one seed, so a crash
// or retry repeats a single run and never a whole task.
package benchmark

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"

	"github.com/ahrav/mibench/internal/domain"
	"github.com/ahrav/mibench/internal/estimator"
	"github.com/ahrav/mibench/internal/results"
	"github.com/ahrav/mibench/internal/task"
	"github.com/ahrav/mibench/pkg/activity"
)

// eventSource names this package in emitted events.
const eventSource = "benchmark"

// runIDNamespace scopes the name-based run ids minted by RunEstimator.
var runIDNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/ahrav/mibench/run"))

// runID names the result of one (task, seed, estimator) run within a
// workflow. Every attempt of a retried activity gets the same id, so stores
// overwrite the earlier record instead of adding a second one.
func runID(workflowID string, r domain.RunResult) string {
	return uuid.NewSHA1(runIDNamespace, []byte(workflowID+"|"+r.Key())).String()
}

// Activities executes estimator runs for BenchmarkWorkflow.
type Activities struct {
	activity.BaseActivities
	registry *estimator.Registry
	runner   *estimator.Runner
	store    results.Store
}

// NewActivities creates benchmark activities. Results are written to store.
func NewActivities(
	base activity.BaseActivities,
	registry *estimator.Registry,
	runner *estimator.Runner,
	store results.Store,
) *Activities {
	return &Activities{
		BaseActivities: base,
		registry:       registry,
		runner:         runner,
		store:          store,
	}
}

// ListSeeds returns the seeds stored in a task directory, in stored order.
func (a *Activities) ListSeeds(ctx context.Context, taskDir string) ([]int64, error) {
	t, err := task.Load(taskDir)
	if err != nil {
		return nil, classify("ListSeeds", err, "load task")
	}
	activity.SafeLog(ctx, "listed task seeds",
		"task_dir", taskDir,
		"task_id", t.TaskID(),
		"seeds", len(t.Seeds()))
	return t.Seeds(), nil
}

// RunEstimator runs one estimator on one seed of a persisted task, stores
// the result and emits an estimate-recorded event. The stored run id is
// derived from the workflow id and the run's key, so a retry after a
// successful write replaces the record.
//
// Invalid input, unreadable tasks, unknown estimators and unknown seeds are
// non-retryable. Estimator failures and store errors are retryable.
func (a *Activities) RunEstimator(ctx context.Context, in domain.RunEstimatorInput) (*domain.RunResult, error) {
	if err := in.Validate(); err != nil {
		return nil, nonRetryable("RunEstimator", err, "invalid input")
	}
	est, err := a.registry.Get(in.EstimatorID)
	if err != nil {
		return nil, nonRetryable("RunEstimator", err, "unknown estimator")
	}
	t, err := task.Load(in.TaskDir)
	if err != nil {
		return nil, classify("RunEstimator", err, "load task")
	}

	wfCtx := a.GetWorkflowContext(ctx)
	activity.SafeLog(ctx, "starting estimator run",
		"workflow_id", wfCtx.WorkflowID,
		"activity_id", wfCtx.ActivityID,
		"task_id", t.TaskID(),
		"seed", in.Seed,
		"estimator_id", in.EstimatorID)
	activity.RecordHeartbeat(ctx, in.Seed)

	timeout := time.Duration(in.TimeoutSeconds) * time.Second
	res, err := a.runner.RunWithTimeout(ctx, t, in.Seed, est, timeout)
	if err != nil {
		return nil, classify("RunEstimator", err, "estimator run failed")
	}
	res.RunID = runID(wfCtx.WorkflowID, res)
	if err := a.store.Put(ctx, res); err != nil {
		return nil, retryable("RunEstimator", err, "store result")
	}

	if envelope, err := domain.NewEstimateRecordedEvent(
		eventSource, wfCtx.WorkflowID, wfCtx.RunID, res, t.MITrue(),
	); err == nil {
		a.EmitEventSafe(ctx, envelope, "estimate recorded")
	} else {
		activity.SafeLogError(ctx, "failed to build event", "error", err)
	}

	activity.SafeLog(ctx, "estimator run completed",
		"task_id", t.TaskID(),
		"seed", in.Seed,
		"estimator_id", in.EstimatorID,
		"mi_estimate", res.MIEstimate,
		"mi_true", t.MITrue())
	return &res, nil
}

// classify maps core errors onto Temporal application errors. Only estimator
// failures are worth retrying; everything else is deterministic.
func classify(tag string, err error, msg string) error {
	switch {
	case errors.Is(err, domain.ErrEstimatorFailed):
		return retryable(tag, err, msg)
	case errors.Is(err, domain.ErrCorruptData),
		errors.Is(err, domain.ErrMetadataValidation),
		errors.Is(err, domain.ErrUnknownSeed),
		errors.Is(err, domain.ErrInvalidParameter),
		errors.Is(err, fs.ErrNotExist):
		return nonRetryable(tag, err, msg)
	default:
		return retryable(tag, err, msg)
	}
}

func nonRetryable(tag string, cause error, msg string) error {
	return temporal.NewNonRetryableApplicationError(msg, tag, cause)
}

func retryable(tag string, cause error, msg string) error {
	return temporal.NewApplicationErrorWithCause(msg, tag, cause)
}
