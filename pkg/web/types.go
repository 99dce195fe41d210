// Package web provides the HTTP surface of the platform: tenant
// provisioning, status and trigger administration, and the work order
// endpoints, including the status-change write path that feeds the
// automation engine.
package web

import (
	"time"

	"github.com/fieldline/fieldline/pkg/models"
)

// CreateStatusRequest is the request body for defining a workflow status.
type CreateStatusRequest struct {
	Name        string `json:"name"          validate:"required"`
	Color       string `json:"color"`
	Group       string `json:"group"         validate:"omitempty,oneof=start active final cancelled"`
	IsFinalStep bool   `json:"is_final_step"`
	SortOrder   int    `json:"sort_order"`
}

// UpdateStatusRequest is the request body for patching a status. The name is
// not patchable; all fields are optional.
type UpdateStatusRequest struct {
	Color       *string `json:"color,omitempty"`
	Group       *string `json:"group,omitempty"         validate:"omitempty,oneof=start active final cancelled"`
	IsFinalStep *bool   `json:"is_final_step,omitempty"`
	SortOrder   *int    `json:"sort_order,omitempty"`
}

// CreateTriggerRequest is the request body for defining a trigger.
// TimeoutAfter is a Go duration string ("4h", "90m"); required when event is
// on_timeout.
type CreateTriggerRequest struct {
	Name         string             `json:"name"          validate:"required,min=3"`
	StatusName   string             `json:"status_name"   validate:"required"`
	Event        string             `json:"event"         validate:"required,oneof=on_enter on_exit on_timeout"`
	TimeoutAfter string             `json:"timeout_after,omitempty"`
	Conditions   []models.Condition `json:"conditions,omitempty"`
	Action       models.ActionItem  `json:"action"`
	CreatedBy    string             `json:"created_by,omitempty"`
}

// UpdateTriggerRequest is the request body for patching a trigger. All fields
// are optional; Conditions replaces the whole list when present.
type UpdateTriggerRequest struct {
	Name         *string            `json:"name,omitempty"          validate:"omitempty,min=3"`
	StatusName   *string            `json:"status_name,omitempty"`
	Event        *string            `json:"event,omitempty"         validate:"omitempty,oneof=on_enter on_exit on_timeout"`
	TimeoutAfter *string            `json:"timeout_after,omitempty"`
	Conditions   []models.Condition `json:"conditions,omitempty"`
	Action       *models.ActionItem `json:"action,omitempty"`
}

// CreateWorkOrderRequest is the request body for dispatching a work order.
// Status is optional; when empty the order starts in the tenant's start
// status.
type CreateWorkOrderRequest struct {
	Title         string         `json:"title"          validate:"required"`
	Description   string         `json:"description,omitempty"`
	Status        string         `json:"status,omitempty"`
	Priority      string         `json:"priority,omitempty"`
	CustomerID    string         `json:"customer_id,omitempty"`
	CustomerName  string         `json:"customer_name,omitempty"`
	CustomerEmail string         `json:"customer_email,omitempty" validate:"omitempty,email"`
	AssigneeID    string         `json:"assignee_id,omitempty"`
	HourlyRate    float64        `json:"hourly_rate,omitempty"    validate:"omitempty,gte=0"`
	CustomFields  map[string]any `json:"custom_fields,omitempty"`
}

// ChangeStatusRequest is the request body of the transition write path.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// LogTimeRequest is the request body for logging labor against a work order.
type LogTimeRequest struct {
	UserID    string    `json:"user_id,omitempty"`
	Minutes   int       `json:"minutes"    validate:"required,gt=0"`
	Notes     string    `json:"notes,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
}
