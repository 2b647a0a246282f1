// Package events provides the generic event infrastructure for domain event emission.
// It defines the Envelope type for wrapping domain events with consistent metadata
// and the EventSink interface for event storage/transmission.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Envelope wraps domain events with consistent metadata for reliable event processing.
// It holds any domain-specific payload while keeping standard fields for routing,
// idempotency and correlation with the workflow run that produced it.
type Envelope struct {
	// ID uniquely identifies this event instance.
	ID string `json:"id"`

	// Type identifies the event for routing and processing.
	// Examples: "benchmark.task_generated", "benchmark.estimate_recorded"
	Type string `json:"type"`

	// Source identifies the component that emitted this event.
	Source string `json:"source"`

	// Version enables schema evolution; semantic versioning.
	Version string `json:"version"`

	// Timestamp records when the event was emitted.
	Timestamp time.Time `json:"timestamp"`

	// IdempotencyKey ensures exactly-once processing during retries.
	// Generated deterministically from workflow context and event content.
	IdempotencyKey string `json:"idempotency_key"`

	// WorkflowID identifies the Temporal workflow that triggered this event.
	// Empty for events emitted outside a workflow, e.g. by the CLI.
	WorkflowID string `json:"workflow_id,omitempty"`

	// RunID identifies the specific workflow execution run.
	RunID string `json:"run_id,omitempty"`

	// Payload contains the domain-specific event data as JSON.
	// Schema varies by Type and Version.
	Payload json.RawMessage `json:"payload"`
}

// EventSink defines the interface for emitting events to downstream consumers.
// Implementations could include database outbox patterns, message queues,
// or simple log outputs.
type EventSink interface {
	// Append adds an event to the sink with best-effort delivery.
	// Implementations should treat duplicate idempotency keys as no-ops.
	//
	// Callers must not fail their primary operation due to event sink failures.
	Append(ctx context.Context, envelope Envelope) error
}

// NoOpEventSink is a null implementation of EventSink for testing or when events are disabled.
type NoOpEventSink struct{}

// Append implements EventSink.Append with no-op behavior.
func (n *NoOpEventSink) Append(_ context.Context, _ Envelope) error {
	return nil
}

// NewNoOpEventSink creates a new no-op event sink.
func NewNoOpEventSink() EventSink {
	return &NoOpEventSink{}
}

// LogEventSink writes every event as a structured log record.
type LogEventSink struct {
	logger *slog.Logger
}

// NewLogEventSink creates a sink that logs to the given logger.
// A nil logger falls back to slog.Default().
func NewLogEventSink(logger *slog.Logger) *LogEventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEventSink{logger: logger}
}

// Append implements EventSink.Append by logging the envelope at info level.
func (s *LogEventSink) Append(ctx context.Context, envelope Envelope) error {
	s.logger.InfoContext(ctx, "event",
		"event_id", envelope.ID,
		"event_type", envelope.Type,
		"source", envelope.Source,
		"idempotency_key", envelope.IdempotencyKey,
		"workflow_id", envelope.WorkflowID,
		"payload", string(envelope.Payload))
	return nil
}

// MemoryEventSink keeps events in memory, dropping repeated idempotency keys.
type MemoryEventSink struct {
	mu     sync.Mutex
	seen   map[string]struct{}
	events []Envelope
}

// NewMemoryEventSink creates an empty in-memory sink.
func NewMemoryEventSink() *MemoryEventSink {
	return &MemoryEventSink{seen: make(map[string]struct{})}
}

// Append implements EventSink.Append.
func (s *MemoryEventSink) Append(_ context.Context, envelope Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.seen[envelope.IdempotencyKey]; dup {
		return nil
	}
	s.seen[envelope.IdempotencyKey] = struct{}{}
	s.events = append(s.events, envelope)
	return nil
}

// Events returns the stored events in append order.
func (s *MemoryEventSink) Events() []Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}
