package file

import (
	"context"
	"path"
	"sort"
	"time"

	"github.com/fieldline/fieldline/pkg/models"
)

// WorkOrderRepository handles work order file operations. Records live under
// work_orders/<tenant>/<id>.json.
type WorkOrderRepository struct {
	store *store[models.WorkOrder]
}

// NewWorkOrderRepository creates a new work order repository.
func NewWorkOrderRepository(root string) *WorkOrderRepository {
	return &WorkOrderRepository{store: newStore[models.WorkOrder](root, "work_orders")}
}

// ListByTenant returns the tenant's work orders, newest first.
func (r *WorkOrderRepository) ListByTenant(_ context.Context, tenantID string) ([]*models.WorkOrder, error) {
	orders, err := r.store.listDir(tenantID)
	if err != nil {
		return nil, err
	}

	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}

		return orders[i].ID < orders[j].ID
	})

	return orders, nil
}

// GetByID retrieves a work order by ID within the tenant. Returns nil when absent.
func (r *WorkOrderRepository) GetByID(_ context.Context, tenantID, id string) (*models.WorkOrder, error) {
	return r.store.get(path.Join(tenantID, id))
}

// Save writes a work order, preserving CreatedAt on updates.
func (r *WorkOrderRepository) Save(_ context.Context, order *models.WorkOrder) error {
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}

	order.UpdatedAt = now

	return r.store.put(path.Join(order.TenantID, order.ID), order)
}
