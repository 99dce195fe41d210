package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldline/fieldline/pkg/eventbus"
	"github.com/fieldline/fieldline/pkg/events"
	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/numbering"
	"github.com/fieldline/fieldline/pkg/persistence"
)

// WorkOrders is the work order write path. ChangeStatus is the entry point of
// the automation engine: it persists the new status and publishes the
// transition event the worker consumes, exactly once per committed change.
type WorkOrders struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	numbers     *numbering.Allocator
}

// NewWorkOrders creates a new work order service.
func NewWorkOrders(persistence persistence.Persistence, publisher eventbus.EventPublisher, numbers *numbering.Allocator) *WorkOrders {
	return &WorkOrders{
		persistence: persistence,
		publisher:   publisher,
		numbers:     numbers,
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *WorkOrders) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List retrieves every work order for the tenant.
func (w *WorkOrders) List(ctx context.Context, tenantID string) ([]*models.WorkOrder, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, ErrTenantRequired
	}

	orders, err := w.persistence.WorkOrders().ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list work orders: %w", err)
	}

	return orders, nil
}

// Get retrieves a single work order by ID.
func (w *WorkOrders) Get(ctx context.Context, tenantID, workOrderID string) (*models.WorkOrder, error) {
	order, err := w.persistence.WorkOrders().GetByID(ctx, tenantID, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load work order: %w", err)
	}

	if order == nil {
		return nil, ErrWorkOrderNotFound
	}

	return order, nil
}

// CreateWorkOrderRequest carries the fields set when dispatching a new job.
type CreateWorkOrderRequest struct {
	TenantID      string         `json:"-"`
	Title         string         `json:"title" validate:"required"`
	Description   string         `json:"description,omitempty"`
	Status        string         `json:"status,omitempty"`
	Priority      string         `json:"priority,omitempty"`
	CustomerID    string         `json:"customer_id,omitempty"`
	CustomerName  string         `json:"customer_name,omitempty"`
	CustomerEmail string         `json:"customer_email,omitempty"`
	AssigneeID    string         `json:"assignee_id,omitempty"`
	HourlyRate    float64        `json:"hourly_rate,omitempty"`
	CustomFields  map[string]any `json:"custom_fields,omitempty"`
}

// Create dispatches a new work order. When no status is given the order
// starts in the tenant's start status. Creation counts as a transition into
// the initial status, so on_enter triggers bound to it fire.
func (w *WorkOrders) Create(ctx context.Context, req CreateWorkOrderRequest) (*models.WorkOrder, error) {
	if strings.TrimSpace(req.TenantID) == "" {
		return nil, ErrTenantRequired
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, NewValidationError("Create", "TITLE_REQUIRED", "work order title is required", ErrTitleRequired)
	}

	status, err := w.resolveInitialStatus(ctx, req.TenantID, req.Status)
	if err != nil {
		return nil, err
	}

	number, err := w.numbers.NextWorkOrderNumber()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate work order number: %w", err)
	}

	now := time.Now().UTC()
	order := &models.WorkOrder{
		ID:            uuid.New().String(),
		TenantID:      req.TenantID,
		Number:        number,
		Title:         req.Title,
		Description:   req.Description,
		Status:        status,
		Priority:      req.Priority,
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		AssigneeID:    req.AssigneeID,
		HourlyRate:    req.HourlyRate,
		CustomFields:  req.CustomFields,
		StatusSince:   now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := w.persistence.WorkOrders().Save(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create work order: %w", err)
	}

	if err := w.publishTransition(ctx, order, "", status, now); err != nil {
		return nil, err
	}

	return order, nil
}

func (w *WorkOrders) resolveInitialStatus(ctx context.Context, tenantID, requested string) (string, error) {
	if requested != "" {
		status, err := w.persistence.WorkflowStatuses().GetByName(ctx, tenantID, requested)
		if err != nil {
			return "", fmt.Errorf("failed to check initial status: %w", err)
		}

		if status == nil {
			return "", NewValidationError(
				"resolveInitialStatus",
				"STATUS_UNKNOWN",
				fmt.Sprintf("status '%s' is not defined for this tenant", requested),
				ErrStatusUnknown,
			)
		}

		return requested, nil
	}

	statuses, err := w.persistence.WorkflowStatuses().ListByTenant(ctx, tenantID)
	if err != nil {
		return "", fmt.Errorf("failed to list statuses: %w", err)
	}

	var starts []*models.WorkflowStatus

	for _, s := range statuses {
		if s.Group == models.StatusGroupStart {
			starts = append(starts, s)
		}
	}

	if len(starts) == 0 {
		return "", NewValidationError(
			"resolveInitialStatus",
			"STATUS_UNKNOWN",
			"tenant has no start status; provision the tenant or specify a status",
			ErrStatusUnknown,
		)
	}

	sort.Slice(starts, func(i, j int) bool { return starts[i].SortOrder < starts[j].SortOrder })

	return starts[0].Name, nil
}

// ChangeStatus moves a work order to a new status. A change to the status the
// order already has is a no-op: nothing is saved and nothing is published.
// Otherwise the order is persisted first, then the transition event is
// published for the worker to process.
func (w *WorkOrders) ChangeStatus(ctx context.Context, tenantID, workOrderID, newStatus string) (*models.WorkOrder, error) {
	order, err := w.Get(ctx, tenantID, workOrderID)
	if err != nil {
		return nil, err
	}

	if order.Status == newStatus {
		return order, nil
	}

	target, err := w.persistence.WorkflowStatuses().GetByName(ctx, tenantID, newStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to check target status: %w", err)
	}

	if target == nil {
		return nil, NewValidationError(
			"ChangeStatus",
			"STATUS_UNKNOWN",
			fmt.Sprintf("status '%s' is not defined for this tenant", newStatus),
			ErrStatusUnknown,
		)
	}

	from := order.Status
	now := time.Now().UTC()
	order.Status = newStatus
	order.StatusSince = now
	order.UpdatedAt = now

	if err := w.persistence.WorkOrders().Save(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save work order: %w", err)
	}

	if err := w.publishTransition(ctx, order, from, newStatus, now); err != nil {
		return nil, err
	}

	return order, nil
}

// publishTransition emits the workorder.transitioned event for one committed
// change. The status write has already been persisted; a publish failure is
// surfaced so the caller knows automation may not have been notified.
func (w *WorkOrders) publishTransition(ctx context.Context, order *models.WorkOrder, from, to string, occurredAt time.Time) error {
	event := events.NewWorkOrderTransitioned(models.Transition{
		TenantID:    order.TenantID,
		WorkOrderID: order.ID,
		From:        from,
		To:          to,
		OccurredAt:  occurredAt,
	})

	if err := w.publisher.Publish(ctx, order.TenantID+"/"+order.ID, event); err != nil {
		return fmt.Errorf("work order saved but transition publish failed: %w", err)
	}

	return nil
}

// LogTimeRequest carries one labor entry against a work order.
type LogTimeRequest struct {
	UserID    string    `json:"user_id,omitempty"`
	Minutes   int       `json:"minutes" validate:"required,gt=0"`
	Notes     string    `json:"notes,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
}

// LogTime records labor minutes against a work order.
func (w *WorkOrders) LogTime(ctx context.Context, tenantID, workOrderID string, req LogTimeRequest) (*models.TimeEntry, error) {
	if req.Minutes <= 0 {
		return nil, NewValidationError("LogTime", "MINUTES_INVALID", "minutes must be greater than zero", ErrMinutesInvalid)
	}

	if _, err := w.Get(ctx, tenantID, workOrderID); err != nil {
		return nil, err
	}

	entry := &models.TimeEntry{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		WorkOrderID: workOrderID,
		UserID:      req.UserID,
		Minutes:     req.Minutes,
		Notes:       req.Notes,
		StartedAt:   req.StartedAt,
		CreatedAt:   time.Now().UTC(),
	}

	if err := w.persistence.TimeEntries().Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to log time: %w", err)
	}

	return entry, nil
}

// TimeEntries retrieves the labor logged against a work order.
func (w *WorkOrders) TimeEntries(ctx context.Context, tenantID, workOrderID string) ([]*models.TimeEntry, error) {
	if _, err := w.Get(ctx, tenantID, workOrderID); err != nil {
		return nil, err
	}

	entries, err := w.persistence.TimeEntries().ListByWorkOrder(ctx, tenantID, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}

	return entries, nil
}

// Invoices retrieves the invoices automation drafted for a work order.
func (w *WorkOrders) Invoices(ctx context.Context, tenantID, workOrderID string) ([]*models.Invoice, error) {
	if _, err := w.Get(ctx, tenantID, workOrderID); err != nil {
		return nil, err
	}

	invoices, err := w.persistence.Invoices().ListByWorkOrder(ctx, tenantID, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	return invoices, nil
}

// Notifications retrieves the notifications queued for a work order.
func (w *WorkOrders) Notifications(ctx context.Context, tenantID, workOrderID string) ([]*models.Notification, error) {
	if _, err := w.Get(ctx, tenantID, workOrderID); err != nil {
		return nil, err
	}

	notifications, err := w.persistence.Notifications().ListByWorkOrder(ctx, tenantID, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

// AutomationRuns retrieves the automation audit trail for a work order.
func (w *WorkOrders) AutomationRuns(ctx context.Context, tenantID, workOrderID string) ([]*models.AutomationRun, error) {
	if _, err := w.Get(ctx, tenantID, workOrderID); err != nil {
		return nil, err
	}

	runs, err := w.persistence.AutomationRuns().ListByWorkOrder(ctx, tenantID, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list automation runs: %w", err)
	}

	return runs, nil
}
