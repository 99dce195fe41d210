package file

import (
	"context"
	"net/url"
	"path"
	"sort"
	"time"

	"github.com/fieldline/fieldline/pkg/models"
)

// StatusRepository handles workflow status file operations. Records live
// under workflow_statuses/<tenant>/<escaped name>.json.
type StatusRepository struct {
	store *store[models.WorkflowStatus]
}

// NewStatusRepository creates a new workflow status repository.
func NewStatusRepository(root string) *StatusRepository {
	return &StatusRepository{store: newStore[models.WorkflowStatus](root, "workflow_statuses")}
}

func statusKey(tenantID, name string) string {
	return path.Join(tenantID, url.PathEscape(name))
}

// ListByTenant returns the tenant's statuses ordered by sort order, then name.
func (r *StatusRepository) ListByTenant(_ context.Context, tenantID string) ([]*models.WorkflowStatus, error) {
	statuses, err := r.store.listDir(tenantID)
	if err != nil {
		return nil, err
	}

	sort.Slice(statuses, func(i, j int) bool {
		if statuses[i].SortOrder != statuses[j].SortOrder {
			return statuses[i].SortOrder < statuses[j].SortOrder
		}

		return statuses[i].Name < statuses[j].Name
	})

	return statuses, nil
}

// GetByName retrieves a status by name within the tenant. Returns nil when absent.
func (r *StatusRepository) GetByName(_ context.Context, tenantID, name string) (*models.WorkflowStatus, error) {
	return r.store.get(statusKey(tenantID, name))
}

// Save writes a status, preserving CreatedAt on updates.
func (r *StatusRepository) Save(_ context.Context, status *models.WorkflowStatus) error {
	now := time.Now().UTC()
	if status.CreatedAt.IsZero() {
		status.CreatedAt = now
	}

	status.UpdatedAt = now

	return r.store.put(statusKey(status.TenantID, status.Name), status)
}

// Delete removes a status by name. Deleting an absent status is a no-op.
func (r *StatusRepository) Delete(_ context.Context, tenantID, name string) error {
	return r.store.remove(statusKey(tenantID, name))
}
