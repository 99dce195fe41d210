package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/persistence"
	"github.com/fieldline/fieldline/pkg/registry"
)

// Triggers administers automation trigger definitions. Create and Update
// enforce the configuration invariants up front so the processor never sees a
// trigger it cannot dispatch: the status must exist in the tenant, the action
// type must be registered, and the params must satisfy the action's schema.
type Triggers struct {
	persistence persistence.Persistence
	registry    *registry.Registry
}

// NewTriggers creates a new trigger administration service.
func NewTriggers(persistence persistence.Persistence, registry *registry.Registry) *Triggers {
	return &Triggers{
		persistence: persistence,
		registry:    registry,
	}
}

// List retrieves every trigger defined for the tenant.
func (t *Triggers) List(ctx context.Context, tenantID string) ([]*models.WorkflowTrigger, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, ErrTenantRequired
	}

	triggers, err := t.persistence.WorkflowTriggers().ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list triggers: %w", err)
	}

	return triggers, nil
}

// Get retrieves a single trigger by ID.
func (t *Triggers) Get(ctx context.Context, tenantID, triggerID string) (*models.WorkflowTrigger, error) {
	trigger, err := t.persistence.WorkflowTriggers().GetByID(ctx, tenantID, triggerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trigger: %w", err)
	}

	if trigger == nil {
		return nil, ErrTriggerNotFound
	}

	return trigger, nil
}

// CreateTriggerRequest carries a new trigger definition.
type CreateTriggerRequest struct {
	TenantID     string              `json:"-"`
	Name         string              `json:"name"        validate:"required,min=3"`
	StatusName   string              `json:"status_name" validate:"required"`
	Event        models.TriggerEvent `json:"event"       validate:"required"`
	TimeoutAfter time.Duration       `json:"timeout_after,omitempty"`
	Conditions   []models.Condition  `json:"conditions,omitempty"`
	Action       models.ActionItem   `json:"action"`
	CreatedBy    string              `json:"-"`
}

// Create defines a new trigger for the tenant.
func (t *Triggers) Create(ctx context.Context, req CreateTriggerRequest) (*models.WorkflowTrigger, error) {
	if strings.TrimSpace(req.TenantID) == "" {
		return nil, ErrTenantRequired
	}

	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < 3 {
		return nil, NewValidationError(
			"Create",
			"TRIGGER_NAME_REQUIRED",
			"trigger name must be at least 3 characters",
			ErrTriggerNameRequired,
		)
	}

	trigger := &models.WorkflowTrigger{
		ID:           uuid.New().String(),
		TenantID:     req.TenantID,
		Name:         req.Name,
		StatusName:   req.StatusName,
		Event:        req.Event,
		TimeoutAfter: req.TimeoutAfter,
		Conditions:   req.Conditions,
		Action:       req.Action,
		CreatedAt:    time.Now().UTC(),
		CreatedBy:    req.CreatedBy,
	}

	if err := t.validateDefinition(ctx, trigger); err != nil {
		return nil, err
	}

	if err := t.persistence.WorkflowTriggers().Save(ctx, trigger); err != nil {
		return nil, fmt.Errorf("failed to create trigger: %w", err)
	}

	return trigger, nil
}

// UpdateTriggerRequest patches a trigger definition. Nil fields are left
// unchanged; Conditions replaces the whole list when non-nil.
type UpdateTriggerRequest struct {
	Name         *string              `json:"name"`
	StatusName   *string              `json:"status_name"`
	Event        *models.TriggerEvent `json:"event"`
	TimeoutAfter *time.Duration       `json:"timeout_after"`
	Conditions   []models.Condition   `json:"conditions"`
	Action       *models.ActionItem   `json:"action"`
}

// Update modifies an existing trigger. The patched definition passes through
// the same validation as Create.
func (t *Triggers) Update(ctx context.Context, tenantID, triggerID string, req UpdateTriggerRequest) (*models.WorkflowTrigger, error) {
	existing, err := t.Get(ctx, tenantID, triggerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < 3 {
			return nil, NewValidationError(
				"Update",
				"TRIGGER_NAME_REQUIRED",
				"trigger name must be at least 3 characters",
				ErrTriggerNameRequired,
			)
		}

		existing.Name = name
	}

	if req.StatusName != nil {
		existing.StatusName = *req.StatusName
	}

	if req.Event != nil {
		existing.Event = *req.Event
	}

	if req.TimeoutAfter != nil {
		existing.TimeoutAfter = *req.TimeoutAfter
	}

	if req.Conditions != nil {
		existing.Conditions = req.Conditions
	}

	if req.Action != nil {
		existing.Action = *req.Action
	}

	if err := t.validateDefinition(ctx, existing); err != nil {
		return nil, err
	}

	if err := t.persistence.WorkflowTriggers().Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update trigger: %w", err)
	}

	return existing, nil
}

// Delete removes a trigger. Armed watches referencing it keep their rows; the
// worker confirms the trigger still exists at fire time, so they retire
// quietly.
func (t *Triggers) Delete(ctx context.Context, tenantID, triggerID string) error {
	existing, err := t.persistence.WorkflowTriggers().GetByID(ctx, tenantID, triggerID)
	if err != nil {
		return fmt.Errorf("failed to load trigger: %w", err)
	}

	if existing == nil {
		return ErrTriggerNotFound
	}

	if err := t.persistence.WorkflowTriggers().Delete(ctx, tenantID, triggerID); err != nil {
		return fmt.Errorf("failed to delete trigger: %w", err)
	}

	return nil
}

// validateDefinition checks the invariants a stored trigger must satisfy:
// structural validity, the status existing in the tenant, the action type
// being registered, and the params matching the action's schema.
func (t *Triggers) validateDefinition(ctx context.Context, trigger *models.WorkflowTrigger) error {
	if err := trigger.Validate(); err != nil {
		return NewValidationError("validateDefinition", "TRIGGER_INVALID", err.Error(), err)
	}

	status, err := t.persistence.WorkflowStatuses().GetByName(ctx, trigger.TenantID, trigger.StatusName)
	if err != nil {
		return fmt.Errorf("failed to check trigger status: %w", err)
	}

	if status == nil {
		return NewValidationError(
			"validateDefinition",
			"STATUS_UNKNOWN",
			fmt.Sprintf("status '%s' is not defined for this tenant", trigger.StatusName),
			ErrStatusUnknown,
		)
	}

	if !t.registry.IsActionRegistered(trigger.Action.Type) {
		return NewValidationError(
			"validateDefinition",
			"ACTION_TYPE_UNKNOWN",
			fmt.Sprintf("action type '%s' is not registered, available: %s",
				trigger.Action.Type, strings.Join(t.registry.AvailableActions(), ", ")),
			ErrActionTypeUnknown,
		)
	}

	if err := t.registry.ValidateActionParams(trigger.Action.Type, trigger.Action.Params); err != nil {
		return NewValidationError("validateDefinition", "ACTION_PARAMS_INVALID", err.Error(), ErrActionParamsInvalid)
	}

	return nil
}
