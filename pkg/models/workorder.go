package models

import "time"

// WorkOrder is a job a tenant dispatches to the field. Status holds the name
// of one of the tenant's workflow statuses; transitions between statuses are
// what drive the automation engine.
type WorkOrder struct {
	ID            string         `json:"id"`
	TenantID      string         `json:"tenant_id" validate:"required"`
	Number        string         `json:"number"`
	Title         string         `json:"title" validate:"required"`
	Description   string         `json:"description,omitempty"`
	Status        string         `json:"status" validate:"required"`
	Priority      string         `json:"priority,omitempty"`
	CustomerID    string         `json:"customer_id,omitempty"`
	CustomerName  string         `json:"customer_name,omitempty"`
	CustomerEmail string         `json:"customer_email,omitempty"`
	AssigneeID    string         `json:"assignee_id,omitempty"`
	HourlyRate    float64        `json:"hourly_rate,omitempty"`
	CustomFields  map[string]any `json:"custom_fields,omitempty"`
	StatusSince   time.Time      `json:"status_since"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Document flattens the work order into the map conditions evaluate against.
// Custom fields nest under "custom_fields" so paths like
// "custom_fields.zone" resolve.
func (w *WorkOrder) Document() map[string]any {
	doc := map[string]any{
		"id":             w.ID,
		"tenant_id":      w.TenantID,
		"number":         w.Number,
		"title":          w.Title,
		"description":    w.Description,
		"status":         w.Status,
		"priority":       w.Priority,
		"customer_id":    w.CustomerID,
		"customer_name":  w.CustomerName,
		"customer_email": w.CustomerEmail,
		"assignee_id":    w.AssigneeID,
		"hourly_rate":    w.HourlyRate,
		"status_since":   w.StatusSince,
	}

	if len(w.CustomFields) > 0 {
		custom := make(map[string]any, len(w.CustomFields))
		for k, v := range w.CustomFields {
			custom[k] = v
		}

		doc["custom_fields"] = custom
	}

	return doc
}
