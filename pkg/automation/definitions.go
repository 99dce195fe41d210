package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/persistence"
)

// DefaultDefinitionsTTL bounds how stale the worker path may see trigger
// edits. Trigger CRUD does not invalidate worker caches across processes.
const DefaultDefinitionsTTL = 30 * time.Second

// Definitions is a read-through cache over trigger definitions. Triggers are
// read twice per transition and rarely written, so the worker path serves
// them from cache; work-order snapshots are never cached.
type Definitions struct {
	triggers persistence.WorkflowTriggerRepository
	cache    *cache.Cache
}

func NewDefinitions(triggers persistence.WorkflowTriggerRepository, ttl time.Duration) *Definitions {
	if ttl <= 0 {
		ttl = DefaultDefinitionsTTL
	}

	return &Definitions{
		triggers: triggers,
		cache:    cache.New(ttl, 1*time.Minute),
	}
}

// TriggersFor returns the triggers bound to (statusName, event) for the
// tenant, serving repeated reads from cache within the TTL window.
func (d *Definitions) TriggersFor(ctx context.Context, tenantID, statusName string, event models.TriggerEvent) ([]*models.WorkflowTrigger, error) {
	key := fmt.Sprintf("%s/%s/%s", tenantID, statusName, event)

	if cached, found := d.cache.Get(key); found {
		triggers, ok := cached.([]*models.WorkflowTrigger)
		if ok {
			return triggers, nil
		}
	}

	triggers, err := d.triggers.ListByStatusEvent(ctx, tenantID, statusName, event)
	if err != nil {
		return nil, err
	}

	d.cache.SetDefault(key, triggers)

	return triggers, nil
}
