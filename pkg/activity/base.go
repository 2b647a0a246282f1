// Package activity holds the pieces every Temporal activity in mibench shares:
// workflow-context lookup, best-effort event emission and logging that
// degrades to a no-op outside a real activity (unit tests call activity
// methods directly with a plain context).
package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"

	"github.com/ahrav/mibench/pkg/events"
)

// Event emission retry budget.
const (
	emitAttempts   = 2
	emitRetryDelay = 200 * time.Millisecond
)

// WorkflowContext identifies the workflow execution an activity runs in.
type WorkflowContext struct {
	WorkflowID string
	RunID      string
	ActivityID string
}

// BaseActivities is embedded by every activity struct.
type BaseActivities struct {
	eventSink events.EventSink
}

// NewBaseActivities creates the shared activity base. A nil sink disables
// event emission.
func NewBaseActivities(sink events.EventSink) BaseActivities {
	return BaseActivities{eventSink: sink}
}

// GetWorkflowContext returns the execution identifiers of the running
// activity. Outside an activity it returns placeholder ids so the same code
// path works under direct invocation.
func (b *BaseActivities) GetWorkflowContext(ctx context.Context) (wfCtx WorkflowContext) {
	defer func() {
		if recover() != nil {
			wfCtx = WorkflowContext{
				WorkflowID: "local",
				RunID:      "local-" + uuid.NewString()[:8],
				ActivityID: "local",
			}
		}
	}()
	info := activity.GetInfo(ctx)
	return WorkflowContext{
		WorkflowID: info.WorkflowExecution.ID,
		RunID:      info.WorkflowExecution.RunID,
		ActivityID: info.ActivityID,
	}
}

// EmitEventSafe appends envelope to the sink, retrying once. Failures are
// logged and never returned: events describe work that already happened.
func (b *BaseActivities) EmitEventSafe(ctx context.Context, envelope events.Envelope, description string) {
	if b.eventSink == nil {
		return
	}

	var err error
	for attempt := range emitAttempts {
		if attempt > 0 {
			select {
			case <-time.After(emitRetryDelay):
			case <-ctx.Done():
				SafeLogError(ctx, "event emission cancelled",
					"event", description,
					"event_type", envelope.Type)
				return
			}
		}
		if err = b.eventSink.Append(ctx, envelope); err == nil {
			SafeLog(ctx, "event emitted",
				"event", description,
				"event_type", envelope.Type,
				"idempotency_key", envelope.IdempotencyKey)
			return
		}
	}
	SafeLogError(ctx, "event emission failed",
		"event", description,
		"event_type", envelope.Type,
		"attempts", emitAttempts,
		"error", err)
}

// SafeLog logs at info level through the activity logger, if there is one.
func SafeLog(ctx context.Context, msg string, keyvals ...any) {
	defer func() { _ = recover() }()
	activity.GetLogger(ctx).Info(msg, keyvals...)
}

// SafeLogError logs at error level through the activity logger, if there is one.
func SafeLogError(ctx context.Context, msg string, keyvals ...any) {
	defer func() { _ = recover() }()
	activity.GetLogger(ctx).Error(msg, keyvals...)
}

// RecordHeartbeat records a heartbeat when running inside an activity.
func RecordHeartbeat(ctx context.Context, details ...any) {
	defer func() { _ = recover() }()
	activity.RecordHeartbeat(ctx, details...)
}
