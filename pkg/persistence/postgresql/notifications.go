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

// NotificationRepository handles notification database operations.
type NotificationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *sql.DB, logger *slog.Logger) *NotificationRepository {
	return &NotificationRepository{db: db, logger: logger}
}

const notificationColumns = `
	id
  , tenant_id
  , work_order_id
  , customer_id
  , channel
  , recipient
  , subject
  , body
  , status
  , is_read
  , idempotency_key
  , created_at
`

func scanNotification(row interface{ Scan(...any) error }) (*models.Notification, error) {
	var (
		notification models.Notification
		customerID   sql.NullString
		subject      sql.NullString
	)

	err := row.Scan(
		&notification.ID,
		&notification.TenantID,
		&notification.WorkOrderID,
		&customerID,
		&notification.Channel,
		&notification.Recipient,
		&subject,
		&notification.Body,
		&notification.Status,
		&notification.IsRead,
		&notification.IdempotencyKey,
		&notification.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	notification.CustomerID = customerID.String
	notification.Subject = subject.String

	return &notification, nil
}

// ListByWorkOrder returns the notifications queued for a work order, newest first.
func (r *NotificationRepository) ListByWorkOrder(ctx context.Context, tenantID, workOrderID string) ([]*models.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE tenant_id = $1 AND work_order_id = $2
		ORDER BY created_at DESC, id
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	notifications := make([]*models.Notification, 0)

	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		notifications = append(notifications, notification)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, nil
}

// GetByIdempotencyKey returns the notification created under the key, or nil.
func (r *NotificationRepository) GetByIdempotencyKey(ctx context.Context, tenantID, key string) (*models.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE tenant_id = $1 AND idempotency_key = $2
	`

	notification, err := scanNotification(r.db.QueryRowContext(ctx, query, tenantID, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}

	return notification, nil
}

// Create inserts a notification under the same race-free idempotency guard
// as invoices.
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO notifications (id, tenant_id, work_order_id, customer_id, channel, recipient, subject, body, status, is_read, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (tenant_id, idempotency_key) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		notification.ID,
		notification.TenantID,
		notification.WorkOrderID,
		nullableString(notification.CustomerID),
		notification.Channel,
		notification.Recipient,
		nullableString(notification.Subject),
		notification.Body,
		notification.Status,
		notification.IsRead,
		notification.IdempotencyKey,
		notification.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read insert result: %w", err)
	}

	if inserted == 0 {
		return persistence.NewRepositoryError("Create", notification.TenantID, notification.IdempotencyKey, persistence.ErrDuplicateIdempotencyKey)
	}

	return nil
}
