package file

import (
	"context"
	"sort"
	"time"

	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/persistence"
)

// StatusWatchRepository handles status watch file operations. Watches are
// stored flat under status_watches/<id>.json since the timekeeper polls due
// watches across every tenant at once.
type StatusWatchRepository struct {
	store *store[models.StatusWatch]
}

// NewStatusWatchRepository creates a new status watch repository.
func NewStatusWatchRepository(root string) *StatusWatchRepository {
	return &StatusWatchRepository{store: newStore[models.StatusWatch](root, "status_watches")}
}

// Arm writes a watch.
func (r *StatusWatchRepository) Arm(_ context.Context, watch *models.StatusWatch) error {
	return r.store.put(watch.ID, watch)
}

// GetByID retrieves a watch by ID. Returns nil when absent.
func (r *StatusWatchRepository) GetByID(_ context.Context, id string) (*models.StatusWatch, error) {
	return r.store.get(id)
}

// DisarmByWorkOrder removes every unfired watch for the work order. Called
// when the order leaves the watched status before the timer fires.
func (r *StatusWatchRepository) DisarmByWorkOrder(_ context.Context, tenantID, workOrderID string) error {
	return r.store.mutate(func() error {
		watches, err := r.store.walkFiles()
		if err != nil {
			return err
		}

		for _, watch := range watches {
			if watch.TenantID == tenantID && watch.WorkOrderID == workOrderID && !watch.Fired {
				if err := r.store.removeFile(watch.ID); err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// ListDue returns unfired watches due at or before the given instant,
// earliest first, capped at limit.
func (r *StatusWatchRepository) ListDue(_ context.Context, before time.Time, limit int) ([]*models.StatusWatch, error) {
	watches, err := r.store.walk()
	if err != nil {
		return nil, err
	}

	due := make([]*models.StatusWatch, 0)

	for _, watch := range watches {
		if watch.Due(before) {
			due = append(due, watch)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if !due[i].DueAt.Equal(due[j].DueAt) {
			return due[i].DueAt.Before(due[j].DueAt)
		}

		return due[i].ID < due[j].ID
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	return due, nil
}

// MarkFired flags a watch as fired so it is not picked up again.
func (r *StatusWatchRepository) MarkFired(_ context.Context, id string) error {
	return r.store.mutate(func() error {
		watch, err := r.store.readFile(id)
		if err != nil {
			return err
		}

		if watch == nil {
			return persistence.NewRepositoryError("MarkFired", "", id, persistence.ErrWatchNotFound)
		}

		watch.Fired = true

		return r.store.writeFile(id, watch)
	})
}

// PurgeFiredBefore deletes fired watches whose due time passed before cutoff.
func (r *StatusWatchRepository) PurgeFiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var purged int64

	err := r.store.mutate(func() error {
		watches, err := r.store.walkFiles()
		if err != nil {
			return err
		}

		for _, watch := range watches {
			if watch.Fired && watch.DueAt.Before(cutoff) {
				if err := r.store.removeFile(watch.ID); err != nil {
					return err
				}

				purged++
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return purged, nil
}
