package file

import (
	"context"
	"path"
	"sort"
	"time"

	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/persistence"
)

// NotificationRepository handles notification file operations. Records live
// under notifications/<tenant>/<id>.json.
type NotificationRepository struct {
	store *store[models.Notification]
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(root string) *NotificationRepository {
	return &NotificationRepository{store: newStore[models.Notification](root, "notifications")}
}

// ListByWorkOrder returns the notifications queued for a work order, newest first.
func (r *NotificationRepository) ListByWorkOrder(_ context.Context, tenantID, workOrderID string) ([]*models.Notification, error) {
	all, err := r.store.listDir(tenantID)
	if err != nil {
		return nil, err
	}

	notifications := make([]*models.Notification, 0)

	for _, notification := range all {
		if notification.WorkOrderID == workOrderID {
			notifications = append(notifications, notification)
		}
	}

	sort.Slice(notifications, func(i, j int) bool {
		if !notifications[i].CreatedAt.Equal(notifications[j].CreatedAt) {
			return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
		}

		return notifications[i].ID < notifications[j].ID
	})

	return notifications, nil
}

// GetByIdempotencyKey returns the notification created under the key, or nil.
func (r *NotificationRepository) GetByIdempotencyKey(_ context.Context, tenantID, key string) (*models.Notification, error) {
	notifications, err := r.store.listDir(tenantID)
	if err != nil {
		return nil, err
	}

	for _, notification := range notifications {
		if notification.IdempotencyKey == key {
			return notification, nil
		}
	}

	return nil, nil
}

// Create inserts a notification, refusing a second record with the same
// idempotency key for the tenant.
func (r *NotificationRepository) Create(_ context.Context, notification *models.Notification) error {
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}

	return r.store.mutate(func() error {
		if notification.IdempotencyKey != "" {
			existing, err := r.store.listFiles(notification.TenantID)
			if err != nil {
				return err
			}

			for _, other := range existing {
				if other.IdempotencyKey == notification.IdempotencyKey {
					return persistence.NewRepositoryError("Create", notification.TenantID, notification.IdempotencyKey, persistence.ErrDuplicateIdempotencyKey)
				}
			}
		}

		return r.store.writeFile(path.Join(notification.TenantID, notification.ID), notification)
	})
}
