package benchmark

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/ahrav/mibench/internal/domain"
)

func TestActivities_RunEstimator(t *testing.T) {
	f := newFixture(t)
	dir := saveTask(t, "gauss", 0, 1)

	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()
	env.RegisterActivity(f.activities.RunEstimator)

	val, err := env.ExecuteActivity(f.activities.RunEstimator, domain.RunEstimatorInput{
		TaskDir:     dir,
		Seed:        1,
		EstimatorID: "gaussian",
	})
	require.NoError(t, err)

	var res *domain.RunResult
	require.NoError(t, val.Get(&res))
	require.NotNil(t, res)
	assert.Equal(t, "gauss", res.TaskID)
	assert.Equal(t, int64(1), res.Seed)
	assert.Equal(t, "gaussian", res.EstimatorID)
	assert.NotEmpty(t, res.RunID)

	stored, err := f.store.List(context.Background(), "gauss")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, res.RunID, stored[0].RunID)

	evts := f.sink.Events()
	require.Len(t, evts, 1)
	assert.Equal(t, string(domain.EventTypeEstimateRecorded), evts[0].Type)
	var payload domain.EstimateRecordedPayload
	require.NoError(t, json.Unmarshal(evts[0].Payload, &payload))
	assert.Equal(t, res.RunID, payload.Result.RunID)
	assert.Greater(t, payload.MITrue, 0.0)
}

func TestActivities_RunEstimatorErrors(t *testing.T) {
	f := newFixture(t)
	dir := saveTask(t, "gauss", 0)

	tests := []struct {
		name         string
		input        domain.RunEstimatorInput
		nonRetryable bool
	}{
		{name: "invalid input", input: domain.RunEstimatorInput{TaskDir: dir}, nonRetryable: true},
		{name: "unknown estimator", input: domain.RunEstimatorInput{TaskDir: dir, EstimatorID: "nope"}, nonRetryable: true},
		{name: "missing task", input: domain.RunEstimatorInput{TaskDir: filepath.Join(dir, "absent"), EstimatorID: "gaussian"}, nonRetryable: true},
		{name: "unknown seed", input: domain.RunEstimatorInput{TaskDir: dir, Seed: 42, EstimatorID: "gaussian"}, nonRetryable: true},
		{name: "estimator failure", input: domain.RunEstimatorInput{TaskDir: dir, EstimatorID: "broken"}, nonRetryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testSuite := &testsuite.WorkflowTestSuite{}
			env := testSuite.NewTestActivityEnvironment()
			env.RegisterActivity(f.activities.RunEstimator)

			_, err := env.ExecuteActivity(f.activities.RunEstimator, tt.input)
			require.Error(t, err)

			var appErr *temporal.ApplicationError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "RunEstimator", appErr.Type())
			assert.Equal(t, tt.nonRetryable, appErr.NonRetryable())
		})
	}

	stored, err := f.store.List(context.Background(), "gauss")
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Empty(t, f.sink.Events())
}

func TestActivities_ListSeeds(t *testing.T) {
	f := newFixture(t)
	dir := saveTask(t, "gauss", 5, 3, 8)

	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()
	env.RegisterActivity(f.activities.ListSeeds)

	val, err := env.ExecuteActivity(f.activities.ListSeeds, dir)
	require.NoError(t, err)
	var seeds []int64
	require.NoError(t, val.Get(&seeds))
	assert.Equal(t, []int64{5, 3, 8}, seeds)

	_, err = env.ExecuteActivity(f.activities.ListSeeds, filepath.Join(dir, "missing"))
	var appErr *temporal.ApplicationError
	require.ErrorAs(t, err, &appErr)
	assert.True(t, appErr.NonRetryable())
}

func TestActivities_DirectCall(t *testing.T) {
	f := newFixture(t)
	dir := saveTask(t, "direct", 0)

	res, err := f.activities.RunEstimator(context.Background(), domain.RunEstimatorInput{
		TaskDir:     dir,
		EstimatorID: "gaussian",
	})
	require.NoError(t, err)
	assert.Equal(t, "direct", res.TaskID)

	evts := f.sink.Events()
	require.Len(t, evts, 1)
	assert.Equal(t, "local", evts[0].WorkflowID)
}

func TestActivities_RunEstimatorRepeatedAttemptStoresOnce(t *testing.T) {
	f := newFixture(t)
	dir := saveTask(t, "retried", 0)
	in := domain.RunEstimatorInput{TaskDir: dir, Seed: 0, EstimatorID: "gaussian"}

	first, err := f.activities.RunEstimator(context.Background(), in)
	require.NoError(t, err)
	second, err := f.activities.RunEstimator(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first.RunID, second.RunID)

	stored, err := f.store.List(context.Background(), "retried")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, first.RunID, stored[0].RunID)
	assert.Len(t, f.sink.Events(), 1)
}

func TestRunID(t *testing.T) {
	r := domain.RunResult{TaskID: "t", Seed: 2, EstimatorID: "gaussian"}
	id := runID("wf-1", r)
	assert.Equal(t, id, runID("wf-1", r))
	assert.NotEqual(t, id, runID("wf-2", r))

	r.Seed = 3
	assert.NotEqual(t, id, runID("wf-1", r))
	assert.NoError(t, domain.RunResult{RunID: id, TaskID: "t", EstimatorID: "gaussian"}.Validate())
}

func TestActivities_RunEstimatorHonoursRequestTimeout(t *testing.T) {
	f := newFixture(t)
	dir := saveTask(t, "slow", 0)

	start := time.Now()
	_, err := f.activities.RunEstimator(context.Background(), domain.RunEstimatorInput{
		TaskDir:        dir,
		EstimatorID:    "slow",
		TimeoutSeconds: 1,
	})
	require.ErrorIs(t, err, domain.ErrEstimatorFailed)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 30*time.Second)

	var appErr *temporal.ApplicationError
	require.ErrorAs(t, err, &appErr)
	assert.False(t, appErr.NonRetryable())
}
