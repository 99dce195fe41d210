package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/persistence/file"
)

func TestProvisioning_SeedsDefaultStatuses(t *testing.T) {
	persist := file.NewPersistence(t.TempDir())
	service := NewProvisioning(persist)

	statuses, err := service.Provision(t.Context(), "tenant-a")
	require.NoError(t, err)
	require.Len(t, statuses, 7)

	byName := make(map[string]*models.WorkflowStatus, len(statuses))
	for _, s := range statuses {
		byName[s.Name] = s
	}

	require.Contains(t, byName, "new")
	assert.Equal(t, models.StatusGroupStart, byName["new"].Group)

	require.Contains(t, byName, "invoiced")
	assert.Equal(t, models.StatusGroupFinal, byName["invoiced"].Group)
	assert.True(t, byName["invoiced"].IsFinalStep)

	require.Contains(t, byName, "cancelled")
	assert.Equal(t, models.StatusGroupCancelled, byName["cancelled"].Group)

	for _, s := range statuses {
		assert.NotEmpty(t, s.ID)
		assert.Equal(t, "tenant-a", s.TenantID)
		assert.False(t, s.CreatedAt.IsZero())
	}
}

func TestProvisioning_IsIdempotent(t *testing.T) {
	persist := file.NewPersistence(t.TempDir())
	service := NewProvisioning(persist)

	first, err := service.Provision(t.Context(), "tenant-a")
	require.NoError(t, err)

	second, err := service.Provision(t.Context(), "tenant-a")
	require.NoError(t, err)
	require.Len(t, second, len(first))

	firstIDs := make(map[string]string, len(first))
	for _, s := range first {
		firstIDs[s.Name] = s.ID
	}

	for _, s := range second {
		assert.Equal(t, firstIDs[s.Name], s.ID, "re-provisioning must not recreate %s", s.Name)
	}
}

func TestProvisioning_PreservesTenantCustomizations(t *testing.T) {
	persist := file.NewPersistence(t.TempDir())
	service := NewProvisioning(persist)
	statuses := NewStatuses(persist)

	_, err := service.Provision(t.Context(), "tenant-a")
	require.NoError(t, err)

	color := "#111111"

	_, err = statuses.Update(t.Context(), "tenant-a", "scheduled", UpdateStatusRequest{Color: &color})
	require.NoError(t, err)

	_, err = service.Provision(t.Context(), "tenant-a")
	require.NoError(t, err)

	loaded, err := statuses.Get(t.Context(), "tenant-a", "scheduled")
	require.NoError(t, err)
	assert.Equal(t, "#111111", loaded.Color)
}

func TestProvisioning_RequiresTenant(t *testing.T) {
	persist := file.NewPersistence(t.TempDir())
	service := NewProvisioning(persist)

	_, err := service.Provision(t.Context(), "  ")
	assert.ErrorIs(t, err, ErrTenantRequired)
}

func TestProvisioning_TenantsAreIsolated(t *testing.T) {
	persist := file.NewPersistence(t.TempDir())
	service := NewProvisioning(persist)

	_, err := service.Provision(t.Context(), "tenant-a")
	require.NoError(t, err)

	others, err := persist.WorkflowStatuses().ListByTenant(t.Context(), "tenant-b")
	require.NoError(t, err)
	assert.Empty(t, others)
}
