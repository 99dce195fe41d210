// Package persistence provides the data storage abstraction for tenant
// workflow configuration, work orders, and automation outcomes.
package persistence

import (
	"context"
	"time"

	"github.com/fieldline/fieldline/pkg/models"
)

// Persistence bundles the per-collection repositories behind a single
// backend handle. Every query is tenant-scoped: a repository never returns
// rows belonging to another tenant than the one asked for.
type Persistence interface {
	WorkflowStatuses() WorkflowStatusRepository
	WorkflowTriggers() WorkflowTriggerRepository
	WorkOrders() WorkOrderRepository
	TimeEntries() TimeEntryRepository
	Invoices() InvoiceRepository
	Notifications() NotificationRepository
	StatusWatches() StatusWatchRepository
	AutomationRuns() AutomationRunRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowStatusRepository stores the per-tenant status vocabulary. Statuses
// are addressed by name within a tenant.
type WorkflowStatusRepository interface {
	ListByTenant(ctx context.Context, tenantID string) ([]*models.WorkflowStatus, error)
	GetByName(ctx context.Context, tenantID, name string) (*models.WorkflowStatus, error)
	Save(ctx context.Context, status *models.WorkflowStatus) error
	Delete(ctx context.Context, tenantID, name string) error
}

// WorkflowTriggerRepository stores automation trigger definitions.
// ListByStatusEvent is the hot path: the transition processor calls it twice
// per transition (on_exit of the old status, on_enter of the new).
type WorkflowTriggerRepository interface {
	ListByTenant(ctx context.Context, tenantID string) ([]*models.WorkflowTrigger, error)
	ListByStatusEvent(ctx context.Context, tenantID, statusName string, event models.TriggerEvent) ([]*models.WorkflowTrigger, error)
	GetByID(ctx context.Context, tenantID, id string) (*models.WorkflowTrigger, error)
	Save(ctx context.Context, trigger *models.WorkflowTrigger) error
	Delete(ctx context.Context, tenantID, id string) error
}

// WorkOrderRepository stores work orders.
type WorkOrderRepository interface {
	ListByTenant(ctx context.Context, tenantID string) ([]*models.WorkOrder, error)
	GetByID(ctx context.Context, tenantID, id string) (*models.WorkOrder, error)
	Save(ctx context.Context, order *models.WorkOrder) error
}

// TimeEntryRepository stores labor logged against work orders.
type TimeEntryRepository interface {
	ListByWorkOrder(ctx context.Context, tenantID, workOrderID string) ([]*models.TimeEntry, error)
	Save(ctx context.Context, entry *models.TimeEntry) error
}

// InvoiceRepository stores invoices. Create enforces the idempotency
// contract: at most one invoice per (tenant, idempotency key), with
// ErrDuplicateIdempotencyKey on a replay.
type InvoiceRepository interface {
	ListByTenant(ctx context.Context, tenantID string) ([]*models.Invoice, error)
	ListByWorkOrder(ctx context.Context, tenantID, workOrderID string) ([]*models.Invoice, error)
	GetByIdempotencyKey(ctx context.Context, tenantID, key string) (*models.Invoice, error)
	Create(ctx context.Context, invoice *models.Invoice) error
}

// NotificationRepository stores queued customer notifications under the same
// idempotency contract as invoices.
type NotificationRepository interface {
	ListByWorkOrder(ctx context.Context, tenantID, workOrderID string) ([]*models.Notification, error)
	GetByIdempotencyKey(ctx context.Context, tenantID, key string) (*models.Notification, error)
	Create(ctx context.Context, notification *models.Notification) error
}

// StatusWatchRepository stores armed dwell timers. The timekeeper polls
// ListDue; the transition processor disarms by work order when the status
// changes.
type StatusWatchRepository interface {
	Arm(ctx context.Context, watch *models.StatusWatch) error
	GetByID(ctx context.Context, id string) (*models.StatusWatch, error)
	DisarmByWorkOrder(ctx context.Context, tenantID, workOrderID string) error
	ListDue(ctx context.Context, before time.Time, limit int) ([]*models.StatusWatch, error)
	MarkFired(ctx context.Context, id string) error
	PurgeFiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AutomationRunRepository stores the audit trail of trigger executions.
type AutomationRunRepository interface {
	ListByWorkOrder(ctx context.Context, tenantID, workOrderID string) ([]*models.AutomationRun, error)
	Save(ctx context.Context, run *models.AutomationRun) error
	PurgeFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
