// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/fieldline/fieldline/pkg/models"
)

// CreateTestStatus creates a test WorkflowStatus with default values that can be overridden.
func CreateTestStatus(overrides ...func(*models.WorkflowStatus)) *models.WorkflowStatus {
	now := time.Now().UTC()
	status := &models.WorkflowStatus{
		ID:        uuid.New().String(),
		TenantID:  "tenant-a",
		Name:      "in_progress",
		Color:     "#f59e0b",
		Group:     models.StatusGroupActive,
		SortOrder: 20,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, override := range overrides {
		override(status)
	}

	status.Normalize()

	return status
}

// WithStatusName sets the status name.
func WithStatusName(name string) func(*models.WorkflowStatus) {
	return func(s *models.WorkflowStatus) {
		s.Name = name
	}
}

// WithStatusGroup sets the status group.
func WithStatusGroup(group models.StatusGroup) func(*models.WorkflowStatus) {
	return func(s *models.WorkflowStatus) {
		s.Group = group
	}
}

// WithStatusTenant sets the owning tenant.
func WithStatusTenant(tenantID string) func(*models.WorkflowStatus) {
	return func(s *models.WorkflowStatus) {
		s.TenantID = tenantID
	}
}

// CreateTestTrigger creates a test WorkflowTrigger with default values that can be overridden.
// The default binds on_enter of in_progress to a log action.
func CreateTestTrigger(overrides ...func(*models.WorkflowTrigger)) *models.WorkflowTrigger {
	trigger := &models.WorkflowTrigger{
		ID:         uuid.New().String(),
		TenantID:   "tenant-a",
		Name:       "audit trail",
		StatusName: "in_progress",
		Event:      models.TriggerOnEnter,
		Action: models.ActionItem{
			Type:   "log",
			Params: map[string]any{"message": "checkpoint", "level": "info"},
		},
		CreatedAt: time.Now().UTC(),
		CreatedBy: "test-user",
	}

	for _, override := range overrides {
		override(trigger)
	}

	return trigger
}

// WithTriggerID sets the trigger ID.
func WithTriggerID(id string) func(*models.WorkflowTrigger) {
	return func(t *models.WorkflowTrigger) {
		t.ID = id
	}
}

// WithTriggerName sets the trigger name.
func WithTriggerName(name string) func(*models.WorkflowTrigger) {
	return func(t *models.WorkflowTrigger) {
		t.Name = name
	}
}

// WithTriggerStatus sets the status the trigger binds to.
func WithTriggerStatus(statusName string) func(*models.WorkflowTrigger) {
	return func(t *models.WorkflowTrigger) {
		t.StatusName = statusName
	}
}

// WithTriggerEvent sets the lifecycle event the trigger binds to.
func WithTriggerEvent(event models.TriggerEvent) func(*models.WorkflowTrigger) {
	return func(t *models.WorkflowTrigger) {
		t.Event = event
	}
}

// WithTimeoutAfter sets the dwell duration for on_timeout triggers.
func WithTimeoutAfter(d time.Duration) func(*models.WorkflowTrigger) {
	return func(t *models.WorkflowTrigger) {
		t.TimeoutAfter = d
	}
}

// WithTriggerAction sets the action type and params.
func WithTriggerAction(actionType string, params map[string]any) func(*models.WorkflowTrigger) {
	return func(t *models.WorkflowTrigger) {
		t.Action = models.ActionItem{Type: actionType, Params: params}
	}
}

// WithTriggerConditions sets the condition gate.
func WithTriggerConditions(conditions ...models.Condition) func(*models.WorkflowTrigger) {
	return func(t *models.WorkflowTrigger) {
		t.Conditions = conditions
	}
}

// CreateTestWorkOrder creates a test WorkOrder with default values that can be overridden.
func CreateTestWorkOrder(overrides ...func(*models.WorkOrder)) *models.WorkOrder {
	now := time.Now().UTC()
	order := &models.WorkOrder{
		ID:           uuid.New().String(),
		TenantID:     "tenant-a",
		Number:       "WO-1042",
		Title:        "Walk-in cooler repair",
		Status:       "new",
		Priority:     "normal",
		CustomerName: "Acme Refrigeration",
		StatusSince:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for _, override := range overrides {
		override(order)
	}

	return order
}

// WithOrderID sets the work order ID.
func WithOrderID(id string) func(*models.WorkOrder) {
	return func(w *models.WorkOrder) {
		w.ID = id
	}
}

// WithOrderTitle sets the work order title.
func WithOrderTitle(title string) func(*models.WorkOrder) {
	return func(w *models.WorkOrder) {
		w.Title = title
	}
}

// WithOrderStatus sets the current status and marks the dwell start now.
func WithOrderStatus(statusName string) func(*models.WorkOrder) {
	return func(w *models.WorkOrder) {
		w.Status = statusName
		w.StatusSince = time.Now().UTC()
	}
}

// WithHourlyRate sets the billing rate.
func WithHourlyRate(rate float64) func(*models.WorkOrder) {
	return func(w *models.WorkOrder) {
		w.HourlyRate = rate
	}
}

// WithCustomFields sets the custom field document.
func WithCustomFields(fields map[string]any) func(*models.WorkOrder) {
	return func(w *models.WorkOrder) {
		w.CustomFields = fields
	}
}
