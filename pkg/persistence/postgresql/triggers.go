package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fieldline/fieldline/pkg/models"
)

// TriggerRepository handles workflow trigger database operations.
type TriggerRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTriggerRepository creates a new workflow trigger repository.
func NewTriggerRepository(db *sql.DB, logger *slog.Logger) *TriggerRepository {
	return &TriggerRepository{db: db, logger: logger}
}

const triggerColumns = `
	id
  , tenant_id
  , name
  , status_name
  , event
  , timeout_after_ms
  , conditions
  , action_type
  , action_params
  , created_at
  , created_by
`

func scanTrigger(row interface{ Scan(...any) error }) (*models.WorkflowTrigger, error) {
	var (
		trigger        models.WorkflowTrigger
		timeoutMs      int64
		conditionsJSON []byte
		paramsJSON     []byte
		createdBy      sql.NullString
	)

	err := row.Scan(
		&trigger.ID,
		&trigger.TenantID,
		&trigger.Name,
		&trigger.StatusName,
		&trigger.Event,
		&timeoutMs,
		&conditionsJSON,
		&trigger.Action.Type,
		&paramsJSON,
		&trigger.CreatedAt,
		&createdBy,
	)
	if err != nil {
		return nil, err
	}

	trigger.TimeoutAfter = time.Duration(timeoutMs) * time.Millisecond
	trigger.CreatedBy = createdBy.String

	if len(conditionsJSON) > 0 {
		if err := json.Unmarshal(conditionsJSON, &trigger.Conditions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger conditions: %w", err)
		}
	}

	if len(paramsJSON) > 0 {
		if err := json.Unmarshal(paramsJSON, &trigger.Action.Params); err != nil {
			return nil, fmt.Errorf("failed to unmarshal action params: %w", err)
		}
	}

	return &trigger, nil
}

func (r *TriggerRepository) queryTriggers(ctx context.Context, query string, args ...any) ([]*models.WorkflowTrigger, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow triggers: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	triggers := make([]*models.WorkflowTrigger, 0)

	for rows.Next() {
		trigger, err := scanTrigger(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow trigger: %w", err)
		}

		triggers = append(triggers, trigger)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflow triggers: %w", err)
	}

	return triggers, nil
}

// ListByTenant returns the tenant's triggers in creation order.
func (r *TriggerRepository) ListByTenant(ctx context.Context, tenantID string) ([]*models.WorkflowTrigger, error) {
	query := `SELECT ` + triggerColumns + `
		FROM workflow_triggers
		WHERE tenant_id = $1
		ORDER BY created_at, id
	`

	return r.queryTriggers(ctx, query, tenantID)
}

// ListByStatusEvent returns the tenant's triggers bound to the given status
// and lifecycle event, in creation order.
func (r *TriggerRepository) ListByStatusEvent(ctx context.Context, tenantID, statusName string, event models.TriggerEvent) ([]*models.WorkflowTrigger, error) {
	query := `SELECT ` + triggerColumns + `
		FROM workflow_triggers
		WHERE tenant_id = $1 AND status_name = $2 AND event = $3
		ORDER BY created_at, id
	`

	return r.queryTriggers(ctx, query, tenantID, statusName, event)
}

// GetByID retrieves a trigger by ID within the tenant. Returns nil when absent.
func (r *TriggerRepository) GetByID(ctx context.Context, tenantID, id string) (*models.WorkflowTrigger, error) {
	query := `SELECT ` + triggerColumns + `
		FROM workflow_triggers
		WHERE tenant_id = $1 AND id = $2
	`

	trigger, err := scanTrigger(r.db.QueryRowContext(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan workflow trigger: %w", err)
	}

	return trigger, nil
}

// Save upserts a trigger by ID.
func (r *TriggerRepository) Save(ctx context.Context, trigger *models.WorkflowTrigger) error {
	if trigger.CreatedAt.IsZero() {
		trigger.CreatedAt = time.Now().UTC()
	}

	if trigger.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate trigger ID: %w", err)
		}

		trigger.ID = id.String()
	}

	conditionsJSON, err := json.Marshal(trigger.Conditions)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger conditions: %w", err)
	}

	paramsJSON, err := json.Marshal(trigger.Action.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal action params: %w", err)
	}

	query := `
		INSERT INTO workflow_triggers (id, tenant_id, name, status_name, event, timeout_after_ms, conditions, action_type, action_params, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			status_name = EXCLUDED.status_name,
			event = EXCLUDED.event,
			timeout_after_ms = EXCLUDED.timeout_after_ms,
			conditions = EXCLUDED.conditions,
			action_type = EXCLUDED.action_type,
			action_params = EXCLUDED.action_params
	`

	_, err = r.db.ExecContext(ctx, query,
		trigger.ID,
		trigger.TenantID,
		trigger.Name,
		trigger.StatusName,
		trigger.Event,
		trigger.TimeoutAfter.Milliseconds(),
		conditionsJSON,
		trigger.Action.Type,
		paramsJSON,
		trigger.CreatedAt,
		nullableString(trigger.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow trigger: %w", err)
	}

	return nil
}

// Delete removes a trigger by ID. Deleting an absent trigger is a no-op.
func (r *TriggerRepository) Delete(ctx context.Context, tenantID, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM workflow_triggers WHERE tenant_id = $1 AND id = $2", tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow trigger: %w", err)
	}

	return nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
