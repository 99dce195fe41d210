// Package models defines the tenant-scoped domain models for work-order
// workflow automation.
package models

import "time"

// StatusGroup classifies a workflow status for UI grouping and terminality.
type StatusGroup string

const (
	StatusGroupStart     StatusGroup = "start"
	StatusGroupActive    StatusGroup = "active"
	StatusGroupFinal     StatusGroup = "final"
	StatusGroupCancelled StatusGroup = "cancelled"
)

// Valid reports whether the group is one of the closed set.
func (g StatusGroup) Valid() bool {
	switch g {
	case StatusGroupStart, StatusGroupActive, StatusGroupFinal, StatusGroupCancelled:
		return true
	}

	return false
}

// WorkflowStatus is one named status in a tenant's workflow. The set of
// statuses referenced by any work order of the tenant must exist here; rows
// are seeded at provisioning and edited only through the admin surface.
type WorkflowStatus struct {
	ID          string      `json:"id"`
	TenantID    string      `json:"tenant_id"   validate:"required"`
	Name        string      `json:"name"        validate:"required,min=2"`
	Color       string      `json:"color"`
	Group       StatusGroup `json:"group"       validate:"required"`
	IsFinalStep bool        `json:"is_final_step"`
	SortOrder   int         `json:"sort_order"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Normalize enforces the structural invariants that do not need a store
// lookup: a final-group status is always a final step.
func (s *WorkflowStatus) Normalize() {
	if s.Group == StatusGroupFinal {
		s.IsFinalStep = true
	}
}

// Terminal reports whether entering this status ends the work order's
// lifecycle (final or cancelled group).
func (s *WorkflowStatus) Terminal() bool {
	return s.Group == StatusGroupFinal || s.Group == StatusGroupCancelled
}
