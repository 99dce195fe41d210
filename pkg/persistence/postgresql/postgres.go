// Package postgresql provides PostgreSQL persistence for tenant workflow
// configuration, work orders, and automation outcomes.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/fieldline/fieldline/pkg/persistence"
	"github.com/fieldline/fieldline/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db            *sql.DB
	logger        *slog.Logger
	statuses      *StatusRepository
	triggers      *TriggerRepository
	workOrders    *WorkOrderRepository
	timeEntries   *TimeEntryRepository
	invoices      *InvoiceRepository
	notifications *NotificationRepository
	watches       *StatusWatchRepository
	runs          *AutomationRunRepository
}

// NewPersistence creates a new PostgreSQL persistence layer and runs pending
// migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:            database,
		logger:        logger,
		statuses:      NewStatusRepository(database, logger),
		triggers:      NewTriggerRepository(database, logger),
		workOrders:    NewWorkOrderRepository(database, logger),
		timeEntries:   NewTimeEntryRepository(database, logger),
		invoices:      NewInvoiceRepository(database, logger),
		notifications: NewNotificationRepository(database, logger),
		watches:       NewStatusWatchRepository(database, logger),
		runs:          NewAutomationRunRepository(database, logger),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) WorkflowStatuses() persistence.WorkflowStatusRepository {
	return p.statuses
}

func (p *Persistence) WorkflowTriggers() persistence.WorkflowTriggerRepository {
	return p.triggers
}

func (p *Persistence) WorkOrders() persistence.WorkOrderRepository {
	return p.workOrders
}

func (p *Persistence) TimeEntries() persistence.TimeEntryRepository {
	return p.timeEntries
}

func (p *Persistence) Invoices() persistence.InvoiceRepository {
	return p.invoices
}

func (p *Persistence) Notifications() persistence.NotificationRepository {
	return p.notifications
}

func (p *Persistence) StatusWatches() persistence.StatusWatchRepository {
	return p.watches
}

func (p *Persistence) AutomationRuns() persistence.AutomationRunRepository {
	return p.runs
}
