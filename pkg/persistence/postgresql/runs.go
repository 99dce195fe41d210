package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldline/fieldline/pkg/models"
)

// AutomationRunRepository handles automation run database operations.
type AutomationRunRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewAutomationRunRepository creates a new automation run repository.
func NewAutomationRunRepository(db *sql.DB, logger *slog.Logger) *AutomationRunRepository {
	return &AutomationRunRepository{db: db, logger: logger}
}

// ListByWorkOrder returns the work order's runs, newest first.
func (r *AutomationRunRepository) ListByWorkOrder(ctx context.Context, tenantID, workOrderID string) ([]*models.AutomationRun, error) {
	query := `
		SELECT
			id
		  , tenant_id
		  , work_order_id
		  , trigger_id
		  , trigger_name
		  , event
		  , action_type
		  , status
		  , detail
		  , idempotency_key
		  , duration_ms
		  , started_at
		  , finished_at
		FROM automation_runs
		WHERE tenant_id = $1 AND work_order_id = $2
		ORDER BY started_at DESC, id
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query automation runs: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	runs := make([]*models.AutomationRun, 0)

	for rows.Next() {
		var (
			run            models.AutomationRun
			triggerID      sql.NullString
			triggerName    sql.NullString
			actionType     sql.NullString
			detail         sql.NullString
			idempotencyKey sql.NullString
			durationMs     int64
			finishedAt     sql.NullTime
		)

		err := rows.Scan(
			&run.ID,
			&run.TenantID,
			&run.WorkOrderID,
			&triggerID,
			&triggerName,
			&run.Event,
			&actionType,
			&run.Status,
			&detail,
			&idempotencyKey,
			&durationMs,
			&run.StartedAt,
			&finishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan automation run: %w", err)
		}

		run.TriggerID = triggerID.String
		run.TriggerName = triggerName.String
		run.ActionType = actionType.String
		run.Detail = detail.String
		run.IdempotencyKey = idempotencyKey.String
		run.Duration = time.Duration(durationMs) * time.Millisecond
		run.FinishedAt = finishedAt.Time

		runs = append(runs, &run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating automation runs: %w", err)
	}

	return runs, nil
}

// Save inserts a run record.
func (r *AutomationRunRepository) Save(ctx context.Context, run *models.AutomationRun) error {
	query := `
		INSERT INTO automation_runs (id, tenant_id, work_order_id, trigger_id, trigger_name, event, action_type, status, detail, idempotency_key, duration_ms, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.TenantID,
		run.WorkOrderID,
		nullableString(run.TriggerID),
		nullableString(run.TriggerName),
		run.Event,
		nullableString(run.ActionType),
		run.Status,
		nullableString(run.Detail),
		nullableString(run.IdempotencyKey),
		run.Duration.Milliseconds(),
		run.StartedAt,
		nullableTime(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save automation run: %w", err)
	}

	return nil
}

// PurgeFinishedBefore deletes runs that finished before cutoff.
func (r *AutomationRunRepository) PurgeFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM automation_runs WHERE finished_at IS NOT NULL AND finished_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge automation runs: %w", err)
	}

	purged, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read delete result: %w", err)
	}

	return purged, nil
}
