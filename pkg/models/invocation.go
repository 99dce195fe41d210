package models

import "time"

// InvocationContext is everything an action handler may read while executing
// one trigger for one dispatch. Handlers treat the snapshot as read-only; the
// idempotency key is how replayed deliveries are recognized.
type InvocationContext struct {
	ID             string           `json:"id"`
	TenantID       string           `json:"tenant_id"`
	WorkOrder      *WorkOrder       `json:"work_order"`
	Snapshot       map[string]any   `json:"snapshot,omitempty"`
	Trigger        *WorkflowTrigger `json:"trigger"`
	Event          TriggerEvent     `json:"event"`
	Params         map[string]any   `json:"params,omitempty"`
	IdempotencyKey string           `json:"idempotency_key"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

// ActionResult is what a handler hands back on success. The executor derives
// the run status from the returned error, not from this struct.
type ActionResult struct {
	Detail string         `json:"detail,omitempty"`
	Output map[string]any `json:"output,omitempty"`
}
