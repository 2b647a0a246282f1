package domain

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRunResult_Validate(t *testing.T) {
	elapsed := 1.5
	negative := -0.1
	valid := RunResult{
		RunID:         uuid.NewString(),
		TaskID:        "task",
		Seed:          3,
		EstimatorID:   "ksg",
		MIEstimate:    -0.01,
		TimeInSeconds: &elapsed,
	}

	tests := []struct {
		name    string
		mutate  func(r *RunResult)
		wantErr bool
	}{
		{name: "valid", mutate: func(*RunResult) {}},
		{name: "no run id", mutate: func(r *RunResult) { r.RunID = "" }},
		{name: "no duration", mutate: func(r *RunResult) { r.TimeInSeconds = nil }},
		{name: "bad run id", mutate: func(r *RunResult) { r.RunID = "not-a-uuid" }, wantErr: true},
		{name: "no task", mutate: func(r *RunResult) { r.TaskID = "" }, wantErr: true},
		{name: "no estimator", mutate: func(r *RunResult) { r.EstimatorID = "" }, wantErr: true},
		{name: "nan estimate", mutate: func(r *RunResult) { r.MIEstimate = math.NaN() }, wantErr: true},
		{name: "infinite estimate", mutate: func(r *RunResult) { r.MIEstimate = math.Inf(-1) }, wantErr: true},
		{name: "negative duration", mutate: func(r *RunResult) { r.TimeInSeconds = &negative }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRunResult_Key(t *testing.T) {
	r := RunResult{TaskID: "spiral-0.8-1-2000", Seed: 4, EstimatorID: "gaussian"}
	assert.Equal(t, "spiral-0.8-1-2000/4/gaussian", r.Key())
}

func TestBenchmarkRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     BenchmarkRequest
		wantErr bool
	}{
		{
			name: "valid",
			req:  BenchmarkRequest{TaskDirs: []string{"a"}, EstimatorIDs: []string{"gaussian"}, TimeoutSeconds: 60},
		},
		{
			name:    "no tasks",
			req:     BenchmarkRequest{EstimatorIDs: []string{"gaussian"}, TimeoutSeconds: 60},
			wantErr: true,
		},
		{
			name:    "empty task dir",
			req:     BenchmarkRequest{TaskDirs: []string{""}, EstimatorIDs: []string{"gaussian"}, TimeoutSeconds: 60},
			wantErr: true,
		},
		{
			name:    "no estimators",
			req:     BenchmarkRequest{TaskDirs: []string{"a"}, TimeoutSeconds: 60},
			wantErr: true,
		},
		{
			name:    "zero timeout",
			req:     BenchmarkRequest{TaskDirs: []string{"a"}, EstimatorIDs: []string{"gaussian"}},
			wantErr: true,
		},
		{
			name: "too many attempts",
			req: BenchmarkRequest{
				TaskDirs: []string{"a"}, EstimatorIDs: []string{"gaussian"}, TimeoutSeconds: 60, MaxAttempts: 11,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRunEstimatorInput_Validate(t *testing.T) {
	assert.NoError(t, RunEstimatorInput{TaskDir: "a", Seed: 0, EstimatorID: "g"}.Validate())
	assert.Error(t, RunEstimatorInput{Seed: 0, EstimatorID: "g"}.Validate())
	assert.Error(t, RunEstimatorInput{TaskDir: "a"}.Validate())
}

func TestBenchmarkReport_Succeeded(t *testing.T) {
	assert.True(t, BenchmarkReport{}.Succeeded())
	assert.False(t, BenchmarkReport{Failures: []RunFailure{{TaskDir: "a", Error: "boom"}}}.Succeeded())
}
