package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/persistence"
)

// defaultStatuses is the status set a fresh tenant starts with. Tenants can
// reshape the vocabulary afterwards through the status registry.
var defaultStatuses = []models.WorkflowStatus{
	{Name: "new", Color: "#42A5F5", Group: models.StatusGroupStart, SortOrder: 10},
	{Name: "scheduled", Color: "#7E57C2", Group: models.StatusGroupActive, SortOrder: 20},
	{Name: "in_progress", Color: "#FFA726", Group: models.StatusGroupActive, SortOrder: 30},
	{Name: "waiting_parts", Color: "#FF7043", Group: models.StatusGroupActive, SortOrder: 40},
	{Name: "completed", Color: "#66BB6A", Group: models.StatusGroupActive, SortOrder: 50},
	{Name: "invoiced", Color: "#26A69A", Group: models.StatusGroupFinal, SortOrder: 60},
	{Name: "cancelled", Color: "#BDBDBD", Group: models.StatusGroupCancelled, SortOrder: 70},
}

// Provisioning seeds new tenants with a workable default configuration.
type Provisioning struct {
	persistence persistence.Persistence
}

// NewProvisioning creates a new provisioning service.
func NewProvisioning(persistence persistence.Persistence) *Provisioning {
	return &Provisioning{
		persistence: persistence,
	}
}

// Provision seeds the default status set for a tenant. Idempotent by name: a
// status the tenant already defines is left untouched, so re-provisioning an
// active tenant never clobbers its customizations. Returns the tenant's full
// status list after seeding.
func (p *Provisioning) Provision(ctx context.Context, tenantID string) ([]*models.WorkflowStatus, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, ErrTenantRequired
	}

	for _, seed := range defaultStatuses {
		existing, err := p.persistence.WorkflowStatuses().GetByName(ctx, tenantID, seed.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to check status %q: %w", seed.Name, err)
		}

		if existing != nil {
			continue
		}

		now := time.Now().UTC()
		status := seed
		status.ID = uuid.New().String()
		status.TenantID = tenantID
		status.CreatedAt = now
		status.UpdatedAt = now
		status.Normalize()

		if err := p.persistence.WorkflowStatuses().Save(ctx, &status); err != nil {
			return nil, fmt.Errorf("failed to seed status %q: %w", seed.Name, err)
		}
	}

	statuses, err := p.persistence.WorkflowStatuses().ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}

	return statuses, nil
}
