// Package events defines event types and structures for work order
// lifecycle notifications.
package events

import (
	"errors"
	"time"

	"github.com/fieldline/fieldline/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Kafka topics.
const Topic = "fieldline.events" // Topic all typed engine events flow through

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Work order lifecycle events.
	WorkOrderTransitionedEvent EventType = "workorder.transitioned"
	StatusTimeoutDueEvent      EventType = "workorder.status.timeout"

	// Automation outcome events.
	AutomationCompletedEvent EventType = "automation.completed"
)

// ErrInvalidEventData is returned when an event payload fails validation.
var ErrInvalidEventData = errors.New("invalid event data")

type BaseEvent struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	Timestamp   time.Time      `json:"timestamp"`
	TenantID    string         `json:"tenant_id"`
	WorkOrderID string         `json:"work_order_id"`
	WorkerID    string         `json:"worker_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// WorkOrderTransitioned is published by the work order write path exactly once
// per committed status change. Delivery downstream is at least once; consumers
// dedupe on the idempotency key derived from (work order, trigger, OccurredAt).
type WorkOrderTransitioned struct {
	BaseEvent

	From       string    `json:"from"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (w WorkOrderTransitioned) GetType() EventType {
	return WorkOrderTransitionedEvent
}

// Transition converts the event back into the model the processor works with.
func (w WorkOrderTransitioned) Transition() models.Transition {
	return models.Transition{
		TenantID:    w.TenantID,
		WorkOrderID: w.WorkOrderID,
		From:        w.From,
		To:          w.To,
		OccurredAt:  w.OccurredAt,
	}
}

// Validate performs basic validation on the transition event structure.
func (w WorkOrderTransitioned) Validate() error {
	if w.TenantID == "" {
		return errors.New("tenant_id is required")
	}

	if w.WorkOrderID == "" {
		return errors.New("work_order_id is required")
	}

	if w.To == "" {
		return errors.New("to status is required")
	}

	if w.OccurredAt.IsZero() {
		return errors.New("occurred_at is required")
	}

	return nil
}

// StatusTimeoutDue is published by the timekeeper when an armed status watch
// comes due. The worker re-reads the work order and fires the on_timeout
// trigger only if the order is still sitting in the watched status for the
// same entry instant.
type StatusTimeoutDue struct {
	BaseEvent

	WatchID    string    `json:"watch_id"`
	TriggerID  string    `json:"trigger_id"`
	StatusName string    `json:"status_name"`
	EnteredAt  time.Time `json:"entered_at"`
	DueAt      time.Time `json:"due_at"`
}

func (s StatusTimeoutDue) GetType() EventType {
	return StatusTimeoutDueEvent
}

// Watch reconstructs the armed watch the processor confirms before firing.
func (s StatusTimeoutDue) Watch() models.StatusWatch {
	return models.StatusWatch{
		ID:          s.WatchID,
		TenantID:    s.TenantID,
		WorkOrderID: s.WorkOrderID,
		StatusName:  s.StatusName,
		TriggerID:   s.TriggerID,
		EnteredAt:   s.EnteredAt,
		DueAt:       s.DueAt,
	}
}

// Validate performs basic validation on the timeout event structure.
func (s StatusTimeoutDue) Validate() error {
	if s.TenantID == "" {
		return errors.New("tenant_id is required")
	}

	if s.WorkOrderID == "" {
		return errors.New("work_order_id is required")
	}

	if s.TriggerID == "" {
		return errors.New("trigger_id is required")
	}

	if s.StatusName == "" {
		return errors.New("status_name is required")
	}

	return nil
}

// RunSummary is the per-trigger outcome carried by AutomationCompleted.
type RunSummary struct {
	TriggerID   string           `json:"trigger_id"`
	TriggerName string           `json:"trigger_name"`
	ActionType  string           `json:"action_type"`
	Status      models.RunStatus `json:"status"`
	Detail      string           `json:"detail,omitempty"`
}

// AutomationCompleted reports the aggregate outcome of one dispatch: every
// candidate trigger's status and the overall counts. Nothing synchronous
// consumes it; it exists for observability and downstream audit.
//
// Event is on_timeout for timeout dispatches and empty for transition
// dispatches, whose runs span on_exit and on_enter; the per-run event lives
// in Runs.
type AutomationCompleted struct {
	BaseEvent

	Event      models.TriggerEvent `json:"event,omitempty"`
	From       string              `json:"from,omitempty"`
	To         string              `json:"to"`
	Executed   int                 `json:"executed"`
	Skipped    int                 `json:"skipped"`
	Suppressed int                 `json:"suppressed"`
	Failed     int                 `json:"failed"`
	DurationMs int64               `json:"duration_ms"`
	Runs       []RunSummary        `json:"runs,omitempty"`
}

func (a AutomationCompleted) GetType() EventType {
	return AutomationCompletedEvent
}

func NewBaseEvent(eventType EventType, tenantID, workOrderID string) BaseEvent {
	return BaseEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		TenantID:    tenantID,
		WorkOrderID: workOrderID,
		Metadata:    make(map[string]any),
	}
}

// NewWorkOrderTransitioned builds the event for one committed status change.
func NewWorkOrderTransitioned(t models.Transition) WorkOrderTransitioned {
	return WorkOrderTransitioned{
		BaseEvent:  NewBaseEvent(WorkOrderTransitionedEvent, t.TenantID, t.WorkOrderID),
		From:       t.From,
		To:         t.To,
		OccurredAt: t.OccurredAt,
	}
}

// NewStatusTimeoutDue builds the dispatch event for a due status watch.
func NewStatusTimeoutDue(watch models.StatusWatch) StatusTimeoutDue {
	return StatusTimeoutDue{
		BaseEvent:  NewBaseEvent(StatusTimeoutDueEvent, watch.TenantID, watch.WorkOrderID),
		WatchID:    watch.ID,
		TriggerID:  watch.TriggerID,
		StatusName: watch.StatusName,
		EnteredAt:  watch.EnteredAt,
		DueAt:      watch.DueAt,
	}
}
