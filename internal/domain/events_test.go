package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEstimateRecordedEvent(t *testing.T) {
	result := RunResult{TaskID: "t", Seed: 1, EstimatorID: "gaussian", MIEstimate: 0.4}

	ev, err := NewEstimateRecordedEvent("worker", "wf-1", "run-1", result, 0.5)
	require.NoError(t, err)
	assert.Equal(t, string(EventTypeEstimateRecorded), ev.Type)
	assert.Equal(t, "worker", ev.Source)
	assert.Equal(t, "wf-1", ev.WorkflowID)
	assert.Equal(t, "run-1", ev.RunID)
	assert.Equal(t, eventVersion, ev.Version)
	assert.NotEmpty(t, ev.ID)

	var payload EstimateRecordedPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, result, payload.Result)
	assert.Equal(t, 0.5, payload.MITrue)
}

func TestNewEstimateRecordedEvent_IdempotencyKey(t *testing.T) {
	result := RunResult{TaskID: "t", Seed: 1, EstimatorID: "gaussian", MIEstimate: 0.4}

	first, err := NewEstimateRecordedEvent("worker", "wf-1", "run-1", result, 0.5)
	require.NoError(t, err)

	// A retry that produced a different estimate is the same logical event.
	result.MIEstimate = 0.41
	retry, err := NewEstimateRecordedEvent("worker", "wf-1", "run-2", result, 0.5)
	require.NoError(t, err)
	assert.Equal(t, first.IdempotencyKey, retry.IdempotencyKey)
	assert.NotEqual(t, first.ID, retry.ID)

	result.Seed = 2
	other, err := NewEstimateRecordedEvent("worker", "wf-1", "run-1", result, 0.5)
	require.NoError(t, err)
	assert.NotEqual(t, first.IdempotencyKey, other.IdempotencyKey)

	result.Seed = 1
	otherWorkflow, err := NewEstimateRecordedEvent("worker", "wf-2", "run-1", result, 0.5)
	require.NoError(t, err)
	assert.NotEqual(t, first.IdempotencyKey, otherWorkflow.IdempotencyKey)
}

func TestNewTaskGeneratedEvent(t *testing.T) {
	meta, err := NewTaskMetadata("spiral-0.8-1-2000", 2, 1, 2000, 0.51)
	require.NoError(t, err)

	ev, err := NewTaskGeneratedEvent("cli", meta, []int64{0, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, string(EventTypeTaskGenerated), ev.Type)
	assert.Empty(t, ev.WorkflowID)

	var payload TaskGeneratedPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.True(t, meta.Equal(payload.Metadata))
	assert.Equal(t, []int64{0, 1, 2}, payload.Seeds)

	again, err := NewTaskGeneratedEvent("cli", meta, []int64{0, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, ev.IdempotencyKey, again.IdempotencyKey)
}
