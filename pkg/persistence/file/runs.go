package file

import (
	"context"
	"path"
	"sort"
	"time"

	"github.com/fieldline/fieldline/pkg/models"
)

// AutomationRunRepository handles automation run file operations. Records
// live under automation_runs/<tenant>/<id>.json.
type AutomationRunRepository struct {
	store *store[models.AutomationRun]
}

// NewAutomationRunRepository creates a new automation run repository.
func NewAutomationRunRepository(root string) *AutomationRunRepository {
	return &AutomationRunRepository{store: newStore[models.AutomationRun](root, "automation_runs")}
}

// ListByWorkOrder returns the work order's runs, newest first.
func (r *AutomationRunRepository) ListByWorkOrder(_ context.Context, tenantID, workOrderID string) ([]*models.AutomationRun, error) {
	all, err := r.store.listDir(tenantID)
	if err != nil {
		return nil, err
	}

	runs := make([]*models.AutomationRun, 0)

	for _, run := range all {
		if run.WorkOrderID == workOrderID {
			runs = append(runs, run)
		}
	}

	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}

		return runs[i].ID < runs[j].ID
	})

	return runs, nil
}

// Save writes a run record.
func (r *AutomationRunRepository) Save(_ context.Context, run *models.AutomationRun) error {
	return r.store.put(path.Join(run.TenantID, run.ID), run)
}

// PurgeFinishedBefore deletes runs that finished before cutoff.
func (r *AutomationRunRepository) PurgeFinishedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var purged int64

	err := r.store.mutate(func() error {
		runs, err := r.store.walkFiles()
		if err != nil {
			return err
		}

		for _, run := range runs {
			if !run.FinishedAt.IsZero() && run.FinishedAt.Before(cutoff) {
				if err := r.store.removeFile(path.Join(run.TenantID, run.ID)); err != nil {
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
