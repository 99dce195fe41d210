package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/persistence"
)

// Statuses administers the per-tenant workflow status vocabulary.
type Statuses struct {
	persistence persistence.Persistence
}

// NewStatuses creates a new status registry service.
func NewStatuses(persistence persistence.Persistence) *Statuses {
	return &Statuses{
		persistence: persistence,
	}
}

// List retrieves every status defined for the tenant.
func (s *Statuses) List(ctx context.Context, tenantID string) ([]*models.WorkflowStatus, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, ErrTenantRequired
	}

	statuses, err := s.persistence.WorkflowStatuses().ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}

	return statuses, nil
}

// Get retrieves a single status by name.
func (s *Statuses) Get(ctx context.Context, tenantID, name string) (*models.WorkflowStatus, error) {
	status, err := s.persistence.WorkflowStatuses().GetByName(ctx, tenantID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load status: %w", err)
	}

	if status == nil {
		return nil, ErrStatusNotFound
	}

	return status, nil
}

// CreateStatusRequest carries the fields a tenant admin sets on a new status.
type CreateStatusRequest struct {
	TenantID    string             `json:"-"`
	Name        string             `json:"name"  validate:"required"`
	Color       string             `json:"color"`
	Group       models.StatusGroup `json:"group" validate:"required"`
	IsFinalStep bool               `json:"is_final_step"`
	SortOrder   int                `json:"sort_order"`
}

// Create defines a new status for the tenant. Status names are unique within
// a tenant; triggers and work orders reference them by name.
func (s *Statuses) Create(ctx context.Context, req CreateStatusRequest) (*models.WorkflowStatus, error) {
	if err := s.validateCreateStatusRequest(&req); err != nil {
		return nil, err
	}

	existing, err := s.persistence.WorkflowStatuses().GetByName(ctx, req.TenantID, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing status: %w", err)
	}

	if existing != nil {
		return nil, ErrStatusExists
	}

	now := time.Now().UTC()
	status := &models.WorkflowStatus{
		ID:          uuid.New().String(),
		TenantID:    req.TenantID,
		Name:        req.Name,
		Color:       req.Color,
		Group:       req.Group,
		IsFinalStep: req.IsFinalStep,
		SortOrder:   req.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	status.Normalize()

	if err := s.persistence.WorkflowStatuses().Save(ctx, status); err != nil {
		return nil, fmt.Errorf("failed to create status: %w", err)
	}

	return status, nil
}

func (s *Statuses) validateCreateStatusRequest(req *CreateStatusRequest) error {
	if strings.TrimSpace(req.TenantID) == "" {
		return ErrTenantRequired
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return NewValidationError(
			"validateCreateStatusRequest",
			"STATUS_NAME_REQUIRED",
			"status name is required",
			ErrStatusNameRequired,
		)
	}

	// Defaults
	if req.Group == "" {
		req.Group = models.StatusGroupActive
	}

	if !req.Group.Valid() {
		return NewValidationError(
			"validateCreateStatusRequest",
			"STATUS_GROUP_INVALID",
			fmt.Sprintf("invalid status group '%s', allowed: start, active, final, cancelled", req.Group),
			ErrStatusGroupInvalid,
		)
	}

	return nil
}

// UpdateStatusRequest patches a status in place. The name is immutable: it is
// the key triggers and work orders reference. Nil fields are left unchanged.
type UpdateStatusRequest struct {
	Color       *string             `json:"color"`
	Group       *models.StatusGroup `json:"group"`
	IsFinalStep *bool               `json:"is_final_step"`
	SortOrder   *int                `json:"sort_order"`
}

// Update modifies an existing status by name.
func (s *Statuses) Update(ctx context.Context, tenantID, name string, req UpdateStatusRequest) (*models.WorkflowStatus, error) {
	existing, err := s.Get(ctx, tenantID, name)
	if err != nil {
		return nil, err
	}

	if req.Group != nil {
		if !req.Group.Valid() {
			return nil, NewValidationError(
				"Update",
				"STATUS_GROUP_INVALID",
				fmt.Sprintf("invalid status group '%s', allowed: start, active, final, cancelled", *req.Group),
				ErrStatusGroupInvalid,
			)
		}

		existing.Group = *req.Group
	}

	if req.Color != nil {
		existing.Color = *req.Color
	}

	if req.IsFinalStep != nil {
		existing.IsFinalStep = *req.IsFinalStep
	}

	if req.SortOrder != nil {
		existing.SortOrder = *req.SortOrder
	}

	existing.Normalize()
	existing.UpdatedAt = time.Now().UTC()

	if err := s.persistence.WorkflowStatuses().Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	return existing, nil
}

// Delete removes a status that nothing references. A status still named by a
// work order or a trigger cannot be deleted; retire it by moving the
// referents first.
func (s *Statuses) Delete(ctx context.Context, tenantID, name string) error {
	existing, err := s.persistence.WorkflowStatuses().GetByName(ctx, tenantID, name)
	if err != nil {
		return fmt.Errorf("failed to load status: %w", err)
	}

	if existing == nil {
		return ErrStatusNotFound
	}

	orders, err := s.persistence.WorkOrders().ListByTenant(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to check work orders for status use: %w", err)
	}

	for _, order := range orders {
		if order.Status == name {
			return ErrStatusInUse
		}
	}

	triggers, err := s.persistence.WorkflowTriggers().ListByTenant(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to check triggers for status use: %w", err)
	}

	for _, trigger := range triggers {
		if trigger.StatusName == name {
			return ErrStatusInUse
		}
	}

	if err := s.persistence.WorkflowStatuses().Delete(ctx, tenantID, name); err != nil {
		return fmt.Errorf("failed to delete status: %w", err)
	}

	return nil
}
