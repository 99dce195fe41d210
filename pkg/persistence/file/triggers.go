package file

import (
	"context"
	"path"
	"sort"
	"time"

	"github.com/fieldline/fieldline/pkg/models"
)

// TriggerRepository handles workflow trigger file operations. Records live
// under workflow_triggers/<tenant>/<id>.json.
type TriggerRepository struct {
	store *store[models.WorkflowTrigger]
}

// NewTriggerRepository creates a new workflow trigger repository.
func NewTriggerRepository(root string) *TriggerRepository {
	return &TriggerRepository{store: newStore[models.WorkflowTrigger](root, "workflow_triggers")}
}

// ListByTenant returns the tenant's triggers ordered by creation time.
func (r *TriggerRepository) ListByTenant(_ context.Context, tenantID string) ([]*models.WorkflowTrigger, error) {
	triggers, err := r.store.listDir(tenantID)
	if err != nil {
		return nil, err
	}

	sort.Slice(triggers, func(i, j int) bool {
		if !triggers[i].CreatedAt.Equal(triggers[j].CreatedAt) {
			return triggers[i].CreatedAt.Before(triggers[j].CreatedAt)
		}

		return triggers[i].ID < triggers[j].ID
	})

	return triggers, nil
}

// ListByStatusEvent returns the tenant's triggers bound to the given status
// and lifecycle event, in creation order. Creation order is the execution
// order the transition processor honors.
func (r *TriggerRepository) ListByStatusEvent(ctx context.Context, tenantID, statusName string, event models.TriggerEvent) ([]*models.WorkflowTrigger, error) {
	all, err := r.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	matched := make([]*models.WorkflowTrigger, 0)

	for _, trigger := range all {
		if trigger.StatusName == statusName && trigger.Event == event {
			matched = append(matched, trigger)
		}
	}

	return matched, nil
}

// GetByID retrieves a trigger by ID within the tenant. Returns nil when absent.
func (r *TriggerRepository) GetByID(_ context.Context, tenantID, id string) (*models.WorkflowTrigger, error) {
	return r.store.get(path.Join(tenantID, id))
}

// Save writes a trigger, preserving CreatedAt on updates.
func (r *TriggerRepository) Save(_ context.Context, trigger *models.WorkflowTrigger) error {
	if trigger.CreatedAt.IsZero() {
		trigger.CreatedAt = time.Now().UTC()
	}

	return r.store.put(path.Join(trigger.TenantID, trigger.ID), trigger)
}

// Delete removes a trigger by ID. Deleting an absent trigger is a no-op.
func (r *TriggerRepository) Delete(_ context.Context, tenantID, id string) error {
	return r.store.remove(path.Join(tenantID, id))
}
