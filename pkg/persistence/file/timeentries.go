package file

import (
	"context"
	"path"
	"sort"
	"time"

	"github.com/fieldline/fieldline/pkg/models"
)

// TimeEntryRepository handles time entry file operations. Records live under
// time_entries/<tenant>/<id>.json.
type TimeEntryRepository struct {
	store *store[models.TimeEntry]
}

// NewTimeEntryRepository creates a new time entry repository.
func NewTimeEntryRepository(root string) *TimeEntryRepository {
	return &TimeEntryRepository{store: newStore[models.TimeEntry](root, "time_entries")}
}

// ListByWorkOrder returns the work order's entries in creation order, which
// is the order invoice lines are laid out in.
func (r *TimeEntryRepository) ListByWorkOrder(_ context.Context, tenantID, workOrderID string) ([]*models.TimeEntry, error) {
	all, err := r.store.listDir(tenantID)
	if err != nil {
		return nil, err
	}

	entries := make([]*models.TimeEntry, 0)

	for _, entry := range all {
		if entry.WorkOrderID == workOrderID {
			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}

		return entries[i].ID < entries[j].ID
	})

	return entries, nil
}

// Save writes a time entry.
func (r *TimeEntryRepository) Save(_ context.Context, entry *models.TimeEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	return r.store.put(path.Join(entry.TenantID, entry.ID), entry)
}
