package benchmark

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/ahrav/mibench/internal/domain"
)

func newWorkflowEnv(f fixture) *testsuite.TestWorkflowEnvironment {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(BenchmarkWorkflow)
	env.RegisterActivity(f.activities.ListSeeds)
	env.RegisterActivity(f.activities.RunEstimator)
	return env
}

func TestBenchmarkWorkflow(t *testing.T) {
	t.Run("runs every estimator on every seed", func(t *testing.T) {
		f := newFixture(t)
		env := newWorkflowEnv(f)
		dirA := saveTask(t, "task-a", 0, 1)
		dirB := saveTask(t, "task-b", 7)

		env.ExecuteWorkflow(BenchmarkWorkflow, domain.BenchmarkRequest{
			TaskDirs:       []string{dirA, dirB},
			EstimatorIDs:   []string{"gaussian", "flaky"},
			TimeoutSeconds: 60,
		})
		require.True(t, env.IsWorkflowCompleted())
		require.NoError(t, env.GetWorkflowError())

		var report *domain.BenchmarkReport
		require.NoError(t, env.GetWorkflowResult(&report))
		assert.True(t, report.Succeeded(), "failures: %v", report.Failures)
		assert.Len(t, report.Results, 6)
		assert.GreaterOrEqual(t, f.flakyCalls.Load(), int32(4), "flaky estimator was retried")

		a, err := f.store.List(context.Background(), "task-a")
		require.NoError(t, err)
		assert.Len(t, a, 4)
		b, err := f.store.List(context.Background(), "task-b")
		require.NoError(t, err)
		assert.Len(t, b, 2)
	})

	t.Run("failed runs are reported", func(t *testing.T) {
		f := newFixture(t)
		env := newWorkflowEnv(f)
		dir := saveTask(t, "task", 0)

		env.ExecuteWorkflow(BenchmarkWorkflow, domain.BenchmarkRequest{
			TaskDirs:       []string{dir, dir + "-missing"},
			EstimatorIDs:   []string{"gaussian", "broken"},
			TimeoutSeconds: 60,
			MaxAttempts:    2,
		})
		require.True(t, env.IsWorkflowCompleted())
		require.NoError(t, env.GetWorkflowError())

		var report *domain.BenchmarkReport
		require.NoError(t, env.GetWorkflowResult(&report))
		assert.False(t, report.Succeeded())
		require.Len(t, report.Results, 1)
		assert.Equal(t, "gaussian", report.Results[0].EstimatorID)

		// One broken run plus both estimators on the missing directory.
		require.Len(t, report.Failures, 3)
		assert.Equal(t, "broken", report.Failures[2].EstimatorID)
		assert.Equal(t, dir, report.Failures[2].TaskDir)
	})

	t.Run("invalid request fails validation", func(t *testing.T) {
		f := newFixture(t)
		env := newWorkflowEnv(f)

		env.ExecuteWorkflow(BenchmarkWorkflow, domain.BenchmarkRequest{})
		require.True(t, env.IsWorkflowCompleted())

		err := env.GetWorkflowError()
		require.Error(t, err)
		var appErr *temporal.ApplicationError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "Validation", appErr.Type())
		assert.True(t, appErr.NonRetryable())
	})
}
