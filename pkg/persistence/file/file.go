// Package file provides file-based persistence for local development and tests.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/fieldline/fieldline/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root          string
	statuses      *StatusRepository
	triggers      *TriggerRepository
	workOrders    *WorkOrderRepository
	timeEntries   *TimeEntryRepository
	invoices      *InvoiceRepository
	notifications *NotificationRepository
	watches       *StatusWatchRepository
	runs          *AutomationRunRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) persistence.Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:          cleanRoot,
		statuses:      NewStatusRepository(cleanRoot),
		triggers:      NewTriggerRepository(cleanRoot),
		workOrders:    NewWorkOrderRepository(cleanRoot),
		timeEntries:   NewTimeEntryRepository(cleanRoot),
		invoices:      NewInvoiceRepository(cleanRoot),
		notifications: NewNotificationRepository(cleanRoot),
		watches:       NewStatusWatchRepository(cleanRoot),
		runs:          NewAutomationRunRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) WorkflowStatuses() persistence.WorkflowStatusRepository {
	return fp.statuses
}

func (fp *Persistence) WorkflowTriggers() persistence.WorkflowTriggerRepository {
	return fp.triggers
}

func (fp *Persistence) WorkOrders() persistence.WorkOrderRepository {
	return fp.workOrders
}

func (fp *Persistence) TimeEntries() persistence.TimeEntryRepository {
	return fp.timeEntries
}

func (fp *Persistence) Invoices() persistence.InvoiceRepository {
	return fp.invoices
}

func (fp *Persistence) Notifications() persistence.NotificationRepository {
	return fp.notifications
}

func (fp *Persistence) StatusWatches() persistence.StatusWatchRepository {
	return fp.watches
}

func (fp *Persistence) AutomationRuns() persistence.AutomationRunRepository {
	return fp.runs
}
