package models

import "time"

// RunStatus is the outcome of a single trigger execution attempt.
type RunStatus string

const (
	// RunStatusExecuted means the action handler ran and returned no error.
	RunStatusExecuted RunStatus = "executed"
	// RunStatusSkipped means the trigger's conditions evaluated false.
	RunStatusSkipped RunStatus = "skipped"
	// RunStatusSuppressed means the trigger could not be attempted: unknown
	// action type, condition evaluation error, or duplicate delivery.
	RunStatusSuppressed RunStatus = "suppressed"
	// RunStatusFailed means the action handler ran and returned an error or
	// panicked.
	RunStatusFailed RunStatus = "failed"
)

// AutomationRun is the audit record for one trigger considered during one
// transition or timeout. Every matched trigger produces exactly one run.
type AutomationRun struct {
	ID             string        `json:"id"`
	TenantID       string        `json:"tenant_id"`
	WorkOrderID    string        `json:"work_order_id"`
	TriggerID      string        `json:"trigger_id"`
	TriggerName    string        `json:"trigger_name"`
	Event          TriggerEvent  `json:"event"`
	ActionType     string        `json:"action_type"`
	Status         RunStatus     `json:"status"`
	Detail         string        `json:"detail,omitempty"`
	IdempotencyKey string        `json:"idempotency_key"`
	Duration       time.Duration `json:"duration"`
	StartedAt      time.Time     `json:"started_at"`
	FinishedAt     time.Time     `json:"finished_at"`
}
