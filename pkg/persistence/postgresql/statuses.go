package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fieldline/fieldline/pkg/models"
)

// closeRows logs instead of failing: by the time rows close, the caller
// already has its result or error.
func closeRows(ctx context.Context, logger *slog.Logger, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logger.ErrorContext(ctx, "failed to close rows", "error", err)
	}
}

// StatusRepository handles workflow status database operations.
type StatusRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStatusRepository creates a new workflow status repository.
func NewStatusRepository(db *sql.DB, logger *slog.Logger) *StatusRepository {
	return &StatusRepository{db: db, logger: logger}
}

const statusColumns = `
	id
  , tenant_id
  , name
  , color
  , status_group
  , is_final_step
  , sort_order
  , created_at
  , updated_at
`

func scanStatus(row interface{ Scan(...any) error }) (*models.WorkflowStatus, error) {
	var status models.WorkflowStatus

	err := row.Scan(
		&status.ID,
		&status.TenantID,
		&status.Name,
		&status.Color,
		&status.Group,
		&status.IsFinalStep,
		&status.SortOrder,
		&status.CreatedAt,
		&status.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &status, nil
}

// ListByTenant returns the tenant's statuses ordered by sort order, then name.
func (r *StatusRepository) ListByTenant(ctx context.Context, tenantID string) ([]*models.WorkflowStatus, error) {
	query := `SELECT ` + statusColumns + `
		FROM workflow_statuses
		WHERE tenant_id = $1
		ORDER BY sort_order, name
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow statuses: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	statuses := make([]*models.WorkflowStatus, 0)

	for rows.Next() {
		status, err := scanStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow status: %w", err)
		}

		statuses = append(statuses, status)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflow statuses: %w", err)
	}

	return statuses, nil
}

// GetByName retrieves a status by name within the tenant. Returns nil when absent.
func (r *StatusRepository) GetByName(ctx context.Context, tenantID, name string) (*models.WorkflowStatus, error) {
	query := `SELECT ` + statusColumns + `
		FROM workflow_statuses
		WHERE tenant_id = $1 AND name = $2
	`

	status, err := scanStatus(r.db.QueryRowContext(ctx, query, tenantID, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan workflow status: %w", err)
	}

	return status, nil
}

// Save upserts a status by (tenant_id, name).
func (r *StatusRepository) Save(ctx context.Context, status *models.WorkflowStatus) error {
	now := time.Now().UTC()
	if status.CreatedAt.IsZero() {
		status.CreatedAt = now
	}

	status.UpdatedAt = now

	if status.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate status ID: %w", err)
		}

		status.ID = id.String()
	}

	query := `
		INSERT INTO workflow_statuses (id, tenant_id, name, color, status_group, is_final_step, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tenant_id, name) DO UPDATE SET
			color = EXCLUDED.color,
			status_group = EXCLUDED.status_group,
			is_final_step = EXCLUDED.is_final_step,
			sort_order = EXCLUDED.sort_order,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		status.ID,
		status.TenantID,
		status.Name,
		status.Color,
		status.Group,
		status.IsFinalStep,
		status.SortOrder,
		status.CreatedAt,
		status.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow status: %w", err)
	}

	return nil
}

// Delete removes a status by name. Deleting an absent status is a no-op.
func (r *StatusRepository) Delete(ctx context.Context, tenantID, name string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM workflow_statuses WHERE tenant_id = $1 AND name = $2", tenantID, name)
	if err != nil {
		return fmt.Errorf("failed to delete workflow status: %w", err)
	}

	return nil
}
