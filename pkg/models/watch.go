package models

import "time"

// StatusWatch arms a dwell timer for a work order sitting in a status that
// has on_timeout triggers. The timekeeper polls for due watches and emits
// timeout events; transitioning out of the status disarms the watch before
// it can fire.
type StatusWatch struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	WorkOrderID string    `json:"work_order_id"`
	StatusName  string    `json:"status_name"`
	TriggerID   string    `json:"trigger_id"`
	EnteredAt   time.Time `json:"entered_at"`
	DueAt       time.Time `json:"due_at"`
	Fired       bool      `json:"fired"`
}

// Due reports whether the watch should fire at the given instant.
func (w StatusWatch) Due(now time.Time) bool {
	return !w.Fired && !now.Before(w.DueAt)
}
