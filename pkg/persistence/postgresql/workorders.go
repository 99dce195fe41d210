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

// WorkOrderRepository handles work order database operations.
type WorkOrderRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkOrderRepository creates a new work order repository.
func NewWorkOrderRepository(db *sql.DB, logger *slog.Logger) *WorkOrderRepository {
	return &WorkOrderRepository{db: db, logger: logger}
}

const workOrderColumns = `
	id
  , tenant_id
  , number
  , title
  , description
  , status
  , priority
  , customer_id
  , customer_name
  , customer_email
  , assignee_id
  , hourly_rate
  , custom_fields
  , status_since
  , created_at
  , updated_at
`

func scanWorkOrder(row interface{ Scan(...any) error }) (*models.WorkOrder, error) {
	var (
		order            models.WorkOrder
		number           sql.NullString
		description      sql.NullString
		priority         sql.NullString
		customerID       sql.NullString
		customerName     sql.NullString
		customerEmail    sql.NullString
		assigneeID       sql.NullString
		customFieldsJSON []byte
		statusSince      sql.NullTime
	)

	err := row.Scan(
		&order.ID,
		&order.TenantID,
		&number,
		&order.Title,
		&description,
		&order.Status,
		&priority,
		&customerID,
		&customerName,
		&customerEmail,
		&assigneeID,
		&order.HourlyRate,
		&customFieldsJSON,
		&statusSince,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Number = number.String
	order.Description = description.String
	order.Priority = priority.String
	order.CustomerID = customerID.String
	order.CustomerName = customerName.String
	order.CustomerEmail = customerEmail.String
	order.AssigneeID = assigneeID.String
	order.StatusSince = statusSince.Time

	if len(customFieldsJSON) > 0 {
		if err := json.Unmarshal(customFieldsJSON, &order.CustomFields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal custom fields: %w", err)
		}
	}

	return &order, nil
}

// ListByTenant returns the tenant's work orders, newest first.
func (r *WorkOrderRepository) ListByTenant(ctx context.Context, tenantID string) ([]*models.WorkOrder, error) {
	query := `SELECT ` + workOrderColumns + `
		FROM work_orders
		WHERE tenant_id = $1
		ORDER BY created_at DESC, id
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query work orders: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	orders := make([]*models.WorkOrder, 0)

	for rows.Next() {
		order, err := scanWorkOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work order: %w", err)
		}

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating work orders: %w", err)
	}

	return orders, nil
}

// GetByID retrieves a work order by ID within the tenant. Returns nil when absent.
func (r *WorkOrderRepository) GetByID(ctx context.Context, tenantID, id string) (*models.WorkOrder, error) {
	query := `SELECT ` + workOrderColumns + `
		FROM work_orders
		WHERE tenant_id = $1 AND id = $2
	`

	order, err := scanWorkOrder(r.db.QueryRowContext(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan work order: %w", err)
	}

	return order, nil
}

// Save upserts a work order by ID.
func (r *WorkOrderRepository) Save(ctx context.Context, order *models.WorkOrder) error {
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}

	order.UpdatedAt = now

	if order.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate work order ID: %w", err)
		}

		order.ID = id.String()
	}

	customFieldsJSON, err := json.Marshal(order.CustomFields)
	if err != nil {
		return fmt.Errorf("failed to marshal custom fields: %w", err)
	}

	query := `
		INSERT INTO work_orders (id, tenant_id, number, title, description, status, priority, customer_id, customer_name, customer_email, assignee_id, hourly_rate, custom_fields, status_since, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			number = EXCLUDED.number,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			priority = EXCLUDED.priority,
			customer_id = EXCLUDED.customer_id,
			customer_name = EXCLUDED.customer_name,
			customer_email = EXCLUDED.customer_email,
			assignee_id = EXCLUDED.assignee_id,
			hourly_rate = EXCLUDED.hourly_rate,
			custom_fields = EXCLUDED.custom_fields,
			status_since = EXCLUDED.status_since,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		order.ID,
		order.TenantID,
		nullableString(order.Number),
		order.Title,
		nullableString(order.Description),
		order.Status,
		nullableString(order.Priority),
		nullableString(order.CustomerID),
		nullableString(order.CustomerName),
		nullableString(order.CustomerEmail),
		nullableString(order.AssigneeID),
		order.HourlyRate,
		customFieldsJSON,
		nullableTime(order.StatusSince),
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save work order: %w", err)
	}

	return nil
}
