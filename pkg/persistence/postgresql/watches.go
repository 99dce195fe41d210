package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/persistence"
)

// StatusWatchRepository handles status watch database operations.
type StatusWatchRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStatusWatchRepository creates a new status watch repository.
func NewStatusWatchRepository(db *sql.DB, logger *slog.Logger) *StatusWatchRepository {
	return &StatusWatchRepository{db: db, logger: logger}
}

const watchColumns = `
	id
  , tenant_id
  , work_order_id
  , status_name
  , trigger_id
  , entered_at
  , due_at
  , fired
`

func scanWatch(row interface{ Scan(...any) error }) (*models.StatusWatch, error) {
	var watch models.StatusWatch

	err := row.Scan(
		&watch.ID,
		&watch.TenantID,
		&watch.WorkOrderID,
		&watch.StatusName,
		&watch.TriggerID,
		&watch.EnteredAt,
		&watch.DueAt,
		&watch.Fired,
	)
	if err != nil {
		return nil, err
	}

	return &watch, nil
}

// Arm inserts a watch.
func (r *StatusWatchRepository) Arm(ctx context.Context, watch *models.StatusWatch) error {
	query := `
		INSERT INTO status_watches (id, tenant_id, work_order_id, status_name, trigger_id, entered_at, due_at, fired)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		watch.ID,
		watch.TenantID,
		watch.WorkOrderID,
		watch.StatusName,
		watch.TriggerID,
		watch.EnteredAt,
		watch.DueAt,
		watch.Fired,
	)
	if err != nil {
		return fmt.Errorf("failed to arm status watch: %w", err)
	}

	return nil
}

// GetByID retrieves a watch by ID. Returns nil when absent.
func (r *StatusWatchRepository) GetByID(ctx context.Context, id string) (*models.StatusWatch, error) {
	query := `SELECT ` + watchColumns + `
		FROM status_watches
		WHERE id = $1
	`

	watch, err := scanWatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan status watch: %w", err)
	}

	return watch, nil
}

// DisarmByWorkOrder removes every unfired watch for the work order.
func (r *StatusWatchRepository) DisarmByWorkOrder(ctx context.Context, tenantID, workOrderID string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM status_watches WHERE tenant_id = $1 AND work_order_id = $2 AND fired = FALSE",
		tenantID, workOrderID,
	)
	if err != nil {
		return fmt.Errorf("failed to disarm status watches: %w", err)
	}

	return nil
}

// ListDue returns unfired watches due at or before the given instant,
// earliest first, capped at limit.
func (r *StatusWatchRepository) ListDue(ctx context.Context, before time.Time, limit int) ([]*models.StatusWatch, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + watchColumns + `
		FROM status_watches
		WHERE fired = FALSE AND due_at <= $1
		ORDER BY due_at, id
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query due status watches: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	watches := make([]*models.StatusWatch, 0)

	for rows.Next() {
		watch, err := scanWatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan status watch: %w", err)
		}

		watches = append(watches, watch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status watches: %w", err)
	}

	return watches, nil
}

// MarkFired flags a watch as fired so it is not picked up again.
func (r *StatusWatchRepository) MarkFired(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "UPDATE status_watches SET fired = TRUE WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to mark status watch fired: %w", err)
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}

	if updated == 0 {
		return persistence.NewRepositoryError("MarkFired", "", id, persistence.ErrWatchNotFound)
	}

	return nil
}

// PurgeFiredBefore deletes fired watches whose due time passed before cutoff.
func (r *StatusWatchRepository) PurgeFiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM status_watches WHERE fired = TRUE AND due_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge status watches: %w", err)
	}

	purged, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read delete result: %w", err)
	}

	return purged, nil
}
