package models

import "time"

// Transition describes one status change of a work order. OccurredAt is
// assigned once, when the change is committed, and flows through the event
// bus so the idempotency key is stable across redeliveries.
type Transition struct {
	TenantID    string    `json:"tenant_id"`
	WorkOrderID string    `json:"work_order_id"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NoChange reports whether the transition is a same-status update, which the
// automation engine treats as a no-op.
func (t Transition) NoChange() bool {
	return t.From == t.To
}
