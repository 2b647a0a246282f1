package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/mibench/pkg/events"
)

// EventType represents the type of event emitted by the system.
type EventType string

const (
	// EventTypeTaskGenerated is emitted when a task has been sampled.
	EventTypeTaskGenerated EventType = "benchmark.task_generated"

	// EventTypeEstimateRecorded is emitted when an estimator run produced a result.
	EventTypeEstimateRecorded EventType = "benchmark.estimate_recorded"
)

// eventVersion is the schema version of every payload below.
const eventVersion = "1.0.0"

// TaskGeneratedPayload is the payload of EventTypeTaskGenerated.
type TaskGeneratedPayload struct {
	Metadata TaskMetadata `json:"metadata"`
	Seeds    []int64      `json:"seeds"`
}

// EstimateRecordedPayload is the payload of EventTypeEstimateRecorded.
type EstimateRecordedPayload struct {
	Result RunResult `json:"result"`
	MITrue float64   `json:"mi_true"`
}

// NewEstimateRecordedEvent wraps a run result in an event envelope.
// The idempotency key is derived from the (task, seed, estimator) triple so a
// retried run does not produce a second logical event.
func NewEstimateRecordedEvent(
	source, workflowID, runID string, result RunResult, miTrue float64,
) (events.Envelope, error) {
	payload, err := json.Marshal(EstimateRecordedPayload{Result: result, MITrue: miTrue})
	if err != nil {
		return events.Envelope{}, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return newEnvelope(EventTypeEstimateRecorded, source, workflowID, runID, result.Key(), payload), nil
}

// NewTaskGeneratedEvent wraps task metadata in an event envelope.
func NewTaskGeneratedEvent(source string, metadata TaskMetadata, seeds []int64) (events.Envelope, error) {
	payload, err := json.Marshal(TaskGeneratedPayload{Metadata: metadata, Seeds: seeds})
	if err != nil {
		return events.Envelope{}, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return newEnvelope(EventTypeTaskGenerated, source, "", "", metadata.TaskID, payload), nil
}

func newEnvelope(
	typ EventType, source, workflowID, runID, key string, payload json.RawMessage,
) events.Envelope {
	sum := sha256.Sum256([]byte(string(typ) + "|" + workflowID + "|" + key))
	return events.Envelope{
		ID:             uuid.New().String(),
		Type:           string(typ),
		Source:         source,
		Version:        eventVersion,
		Timestamp:      time.Now().UTC(),
		IdempotencyKey: hex.EncodeToString(sum[:16]),
		WorkflowID:     workflowID,
		RunID:          runID,
		Payload:        payload,
	}
}
