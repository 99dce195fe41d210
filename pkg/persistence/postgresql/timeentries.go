package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fieldline/fieldline/pkg/models"
)

// TimeEntryRepository handles time entry database operations.
type TimeEntryRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTimeEntryRepository creates a new time entry repository.
func NewTimeEntryRepository(db *sql.DB, logger *slog.Logger) *TimeEntryRepository {
	return &TimeEntryRepository{db: db, logger: logger}
}

// ListByWorkOrder returns the work order's entries in creation order.
func (r *TimeEntryRepository) ListByWorkOrder(ctx context.Context, tenantID, workOrderID string) ([]*models.TimeEntry, error) {
	query := `
		SELECT
			id
		  , tenant_id
		  , work_order_id
		  , user_id
		  , minutes
		  , notes
		  , started_at
		  , created_at
		FROM time_entries
		WHERE tenant_id = $1 AND work_order_id = $2
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	entries := make([]*models.TimeEntry, 0)

	for rows.Next() {
		var (
			entry     models.TimeEntry
			userID    sql.NullString
			notes     sql.NullString
			startedAt sql.NullTime
		)

		err := rows.Scan(
			&entry.ID,
			&entry.TenantID,
			&entry.WorkOrderID,
			&userID,
			&entry.Minutes,
			&notes,
			&startedAt,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}

		entry.UserID = userID.String
		entry.Notes = notes.String
		entry.StartedAt = startedAt.Time

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time entries: %w", err)
	}

	return entries, nil
}

// Save inserts a time entry.
func (r *TimeEntryRepository) Save(ctx context.Context, entry *models.TimeEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if entry.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate time entry ID: %w", err)
		}

		entry.ID = id.String()
	}

	query := `
		INSERT INTO time_entries (id, tenant_id, work_order_id, user_id, minutes, notes, started_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.TenantID,
		entry.WorkOrderID,
		nullableString(entry.UserID),
		entry.Minutes,
		nullableString(entry.Notes),
		nullableTime(entry.StartedAt),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save time entry: %w", err)
	}

	return nil
}
