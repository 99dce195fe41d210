package automation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline/fieldline/pkg/automation"
	"github.com/fieldline/fieldline/pkg/models"
)

// fakeTriggerRepo serves a fixed trigger set and counts backing-store reads
// so the tests can tell a cache hit from a refetch.
type fakeTriggerRepo struct {
	calls    int
	triggers map[string][]*models.WorkflowTrigger
}

func (r *fakeTriggerRepo) ListByTenant(_ context.Context, _ string) ([]*models.WorkflowTrigger, error) {
	return nil, nil
}

func (r *fakeTriggerRepo) ListByStatusEvent(_ context.Context, tenantID, statusName string, event models.TriggerEvent) ([]*models.WorkflowTrigger, error) {
	r.calls++

	return r.triggers[tenantID+"/"+statusName+"/"+string(event)], nil
}

func (r *fakeTriggerRepo) GetByID(_ context.Context, _, _ string) (*models.WorkflowTrigger, error) {
	return nil, nil
}

func (r *fakeTriggerRepo) Save(_ context.Context, _ *models.WorkflowTrigger) error { return nil }

func (r *fakeTriggerRepo) Delete(_ context.Context, _, _ string) error { return nil }

func TestDefinitions_ServesRepeatedReadsFromCache(t *testing.T) {
	ctx := context.Background()
	repo := &fakeTriggerRepo{
		triggers: map[string][]*models.WorkflowTrigger{
			"tenant-a/completed/on_enter": {
				{ID: "trg-1", TenantID: "tenant-a", StatusName: "completed", Event: models.TriggerOnEnter},
			},
		},
	}

	definitions := automation.NewDefinitions(repo, automation.DefaultDefinitionsTTL)

	for range 3 {
		triggers, err := definitions.TriggersFor(ctx, "tenant-a", "completed", models.TriggerOnEnter)
		require.NoError(t, err)
		require.Len(t, triggers, 1)
		assert.Equal(t, "trg-1", triggers[0].ID)
	}

	assert.Equal(t, 1, repo.calls)
}

func TestDefinitions_CachesEmptyResults(t *testing.T) {
	ctx := context.Background()
	repo := &fakeTriggerRepo{}
	definitions := automation.NewDefinitions(repo, automation.DefaultDefinitionsTTL)

	for range 2 {
		triggers, err := definitions.TriggersFor(ctx, "tenant-a", "new", models.TriggerOnExit)
		require.NoError(t, err)
		assert.Empty(t, triggers)
	}

	assert.Equal(t, 1, repo.calls)
}

func TestDefinitions_RefetchesAfterTTL(t *testing.T) {
	ctx := context.Background()
	repo := &fakeTriggerRepo{}
	definitions := automation.NewDefinitions(repo, 20*time.Millisecond)

	_, err := definitions.TriggersFor(ctx, "tenant-a", "completed", models.TriggerOnEnter)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	_, err = definitions.TriggersFor(ctx, "tenant-a", "completed", models.TriggerOnEnter)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.calls)
}

func TestDefinitions_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	repo := &fakeTriggerRepo{}
	definitions := automation.NewDefinitions(repo, automation.DefaultDefinitionsTTL)

	_, err := definitions.TriggersFor(ctx, "tenant-a", "completed", models.TriggerOnEnter)
	require.NoError(t, err)
	_, err = definitions.TriggersFor(ctx, "tenant-a", "completed", models.TriggerOnExit)
	require.NoError(t, err)
	_, err = definitions.TriggersFor(ctx, "tenant-b", "completed", models.TriggerOnEnter)
	require.NoError(t, err)

	assert.Equal(t, 3, repo.calls)
}
