package models

import "time"

// TimeEntry records labor logged against a work order, in whole minutes.
type TimeEntry struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id" validate:"required"`
	WorkOrderID string    `json:"work_order_id" validate:"required"`
	UserID      string    `json:"user_id,omitempty"`
	Minutes     int       `json:"minutes" validate:"required,gt=0"`
	Notes       string    `json:"notes,omitempty"`
	StartedAt   time.Time `json:"started_at,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Hours converts the entry to decimal hours rounded to two places, the unit
// invoice lines bill in.
func (t TimeEntry) Hours() float64 {
	return Round2(float64(t.Minutes) / 60.0)
}
