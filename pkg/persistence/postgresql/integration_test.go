package postgresql_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/persistence"
)

func TestStatusRepository_Postgres(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.WorkflowStatuses()

	statuses := []*models.WorkflowStatus{
		{TenantID: "tenant-a", Name: "new", Color: "#9E9E9E", Group: models.StatusGroupStart, SortOrder: 1},
		{TenantID: "tenant-a", Name: "in_progress", Color: "#1E88E5", Group: models.StatusGroupActive, SortOrder: 2},
		{TenantID: "tenant-a", Name: "done", Color: "#43A047", Group: models.StatusGroupFinal, IsFinalStep: true, SortOrder: 3},
		{TenantID: "tenant-b", Name: "new", Group: models.StatusGroupStart, SortOrder: 1},
	}
	for _, status := range statuses {
		require.NoError(t, repo.Save(ctx, status))
		assert.NotEmpty(t, status.ID)
	}

	// Tenant scoping
	listed, err := repo.ListByTenant(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "new", listed[0].Name)
	assert.Equal(t, "done", listed[2].Name)

	// Upsert by (tenant, name) keeps one row
	update := &models.WorkflowStatus{TenantID: "tenant-a", Name: "done", Color: "#2E7D32", Group: models.StatusGroupFinal, IsFinalStep: true, SortOrder: 5}
	require.NoError(t, repo.Save(ctx, update))

	fetched, err := repo.GetByName(ctx, "tenant-a", "done")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, "#2E7D32", fetched.Color)
	assert.Equal(t, 5, fetched.SortOrder)

	// Missing status resolves to nil
	ghost, err := repo.GetByName(ctx, "tenant-a", "ghost")
	require.NoError(t, err)
	assert.Nil(t, ghost)

	// Delete
	require.NoError(t, repo.Delete(ctx, "tenant-a", "in_progress"))

	listed, err = repo.ListByTenant(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestTriggerRepository_Postgres(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.WorkflowTriggers()

	first := &models.WorkflowTrigger{
		TenantID:   "tenant-a",
		Name:       "invoice on done",
		StatusName: "done",
		Event:      models.TriggerOnEnter,
		Conditions: []models.Condition{
			{Field: "hourly_rate", Op: models.OpGreater, Value: 0},
			{Field: "priority", Op: models.OpEqual, Value: "high"},
		},
		Action:    models.ActionItem{Type: "create_invoice_draft", Params: map[string]any{"due_days": 30}},
		CreatedAt: time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC),
	}
	second := &models.WorkflowTrigger{
		TenantID:   "tenant-a",
		Name:       "notify on done",
		StatusName: "done",
		Event:      models.TriggerOnEnter,
		Action:     models.ActionItem{Type: "notify_customer", Params: map[string]any{"message": "Job done"}},
		CreatedAt:  time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC),
	}
	timeout := &models.WorkflowTrigger{
		TenantID:     "tenant-a",
		Name:         "nudge stale",
		StatusName:   "scheduled",
		Event:        models.TriggerOnTimeout,
		TimeoutAfter: 48 * time.Hour,
		Action:       models.ActionItem{Type: "notify_customer"},
	}

	for _, trigger := range []*models.WorkflowTrigger{first, second, timeout} {
		require.NoError(t, repo.Save(ctx, trigger))
		assert.NotEmpty(t, trigger.ID)
	}

	// Lookup by status and event in creation order
	matched, err := repo.ListByStatusEvent(ctx, "tenant-a", "done", models.TriggerOnEnter)
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, "invoice on done", matched[0].Name)
	assert.Equal(t, "notify on done", matched[1].Name)

	// Conditions and params survive the JSONB round trip
	require.Len(t, matched[0].Conditions, 2)
	assert.Equal(t, models.OpGreater, matched[0].Conditions[0].Op)
	assert.InDelta(t, 30.0, matched[0].Action.Params["due_days"], 0.0001)

	// Duration round trip
	fetched, err := repo.GetByID(ctx, "tenant-a", timeout.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, 48*time.Hour, fetched.TimeoutAfter)

	// Delete
	require.NoError(t, repo.Delete(ctx, "tenant-a", second.ID))

	matched, err = repo.ListByStatusEvent(ctx, "tenant-a", "done", models.TriggerOnEnter)
	require.NoError(t, err)
	assert.Len(t, matched, 1)
}

func TestWorkOrderAndTimeEntries_Postgres(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	order := &models.WorkOrder{
		TenantID:      "tenant-a",
		Number:        "WO-1042",
		Title:         "Replace rooftop compressor",
		Status:        "new",
		Priority:      "high",
		CustomerName:  "Samara Reis",
		CustomerEmail: "samara@example.com",
		HourlyRate:    50,
		CustomFields:  map[string]any{"zone": "north"},
		StatusSince:   time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.WorkOrders().Save(ctx, order))
	require.NotEmpty(t, order.ID)

	fetched, err := p.WorkOrders().GetByID(ctx, "tenant-a", order.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, "Replace rooftop compressor", fetched.Title)
	assert.Equal(t, "north", fetched.CustomFields["zone"])
	assert.InDelta(t, 50.0, fetched.HourlyRate, 0.0001)

	// Tenant isolation
	other, err := p.WorkOrders().GetByID(ctx, "tenant-b", order.ID)
	require.NoError(t, err)
	assert.Nil(t, other)

	// Status update round trip
	fetched.Status = "in_progress"
	fetched.StatusSince = time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, p.WorkOrders().Save(ctx, fetched))

	updated, err := p.WorkOrders().GetByID(ctx, "tenant-a", order.ID)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", updated.Status)

	// Time entries in creation order
	entries := []*models.TimeEntry{
		{TenantID: "tenant-a", WorkOrderID: order.ID, Minutes: 150, Notes: "diagnosis", CreatedAt: time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)},
		{TenantID: "tenant-a", WorkOrderID: order.ID, Minutes: 60, Notes: "repair", CreatedAt: time.Date(2025, 5, 2, 14, 0, 0, 0, time.UTC)},
	}
	for _, entry := range entries {
		require.NoError(t, p.TimeEntries().Save(ctx, entry))
	}

	listed, err := p.TimeEntries().ListByWorkOrder(ctx, "tenant-a", order.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, 150, listed[0].Minutes)
	assert.Equal(t, 60, listed[1].Minutes)
}

func TestInvoiceRepository_Postgres_Idempotency(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.Invoices()

	key := "wo/wo-1/trg/trg-1/1714569600000000000"
	invoice := &models.Invoice{
		ID:             uuid.New().String(),
		TenantID:       "tenant-a",
		WorkOrderID:    "wo-1",
		Number:         "INV-AAA111",
		Status:         models.InvoiceStatusDraft,
		Lines: []models.InvoiceLine{
			{Description: "Labor: 2.5h @ 50.00/h", Quantity: 2.5, UnitPrice: 50, Amount: 125},
			{Description: "Labor: 1h @ 50.00/h", Quantity: 1, UnitPrice: 50, Amount: 50},
		},
		Subtotal:       175,
		Total:          175,
		IdempotencyKey: key,
		IssuedAt:       time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC),
		DueAt:          time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, repo.Create(ctx, invoice))

	// Replay with the same key is rejected
	replay := &models.Invoice{
		ID:             uuid.New().String(),
		TenantID:       "tenant-a",
		WorkOrderID:    "wo-1",
		Number:         "INV-BBB222",
		Status:         models.InvoiceStatusDraft,
		IdempotencyKey: key,
	}

	err := repo.Create(ctx, replay)
	require.Error(t, err)
	assert.True(t, persistence.IsDuplicateIdempotencyKey(err))

	// Same key under another tenant is a different record
	foreign := &models.Invoice{
		ID:             uuid.New().String(),
		TenantID:       "tenant-b",
		WorkOrderID:    "wo-1",
		Number:         "INV-CCC333",
		Status:         models.InvoiceStatusDraft,
		IdempotencyKey: key,
	}
	require.NoError(t, repo.Create(ctx, foreign))

	// Reads
	byKey, err := repo.GetByIdempotencyKey(ctx, "tenant-a", key)
	require.NoError(t, err)
	require.NotNil(t, byKey)
	assert.Equal(t, "INV-AAA111", byKey.Number)
	require.Len(t, byKey.Lines, 2)
	assert.InDelta(t, 175.0, byKey.Total, 0.0001)

	byOrder, err := repo.ListByWorkOrder(ctx, "tenant-a", "wo-1")
	require.NoError(t, err)
	assert.Len(t, byOrder, 1)
}

func TestNotificationRepository_Postgres_Idempotency(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.Notifications()

	notification := &models.Notification{
		ID:             uuid.New().String(),
		TenantID:       "tenant-a",
		WorkOrderID:    "wo-1",
		Channel:        models.NotificationChannelEmail,
		Recipient:      "sam@example.com",
		Subject:        "Work order update",
		Body:           "Job done",
		Status:         models.NotificationStatusQueued,
		IdempotencyKey: "wo/wo-1/trg/trg-2/1714569600000000000",
	}
	require.NoError(t, repo.Create(ctx, notification))

	replay := &models.Notification{
		ID:             uuid.New().String(),
		TenantID:       "tenant-a",
		WorkOrderID:    "wo-1",
		Channel:        models.NotificationChannelEmail,
		Recipient:      "sam@example.com",
		Body:           "Job done",
		Status:         models.NotificationStatusQueued,
		IdempotencyKey: notification.IdempotencyKey,
	}

	err := repo.Create(ctx, replay)
	require.Error(t, err)
	assert.True(t, persistence.IsDuplicateIdempotencyKey(err))

	listed, err := repo.ListByWorkOrder(ctx, "tenant-a", "wo-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, models.NotificationStatusQueued, listed[0].Status)
}

func TestStatusWatchRepository_Postgres(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.StatusWatches()

	now := time.Now().UTC()
	watches := []*models.StatusWatch{
		{ID: uuid.New().String(), TenantID: "tenant-a", WorkOrderID: "wo-1", StatusName: "scheduled", TriggerID: "trg-1", EnteredAt: now.Add(-49 * time.Hour), DueAt: now.Add(-time.Hour)},
		{ID: uuid.New().String(), TenantID: "tenant-b", WorkOrderID: "wo-9", StatusName: "scheduled", TriggerID: "trg-7", EnteredAt: now.Add(-50 * time.Hour), DueAt: now.Add(-2 * time.Hour)},
		{ID: uuid.New().String(), TenantID: "tenant-a", WorkOrderID: "wo-2", StatusName: "waiting_parts", TriggerID: "trg-2", EnteredAt: now, DueAt: now.Add(time.Hour)},
	}
	for _, watch := range watches {
		require.NoError(t, repo.Arm(ctx, watch))
	}

	// Due watches across tenants, earliest first
	due, err := repo.ListDue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "wo-9", due[0].WorkOrderID)
	assert.Equal(t, "wo-1", due[1].WorkOrderID)

	// Fired watches leave the poll set
	require.NoError(t, repo.MarkFired(ctx, watches[0].ID))

	due, err = repo.ListDue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)

	// Disarm clears pending watches for a work order
	require.NoError(t, repo.DisarmByWorkOrder(ctx, "tenant-b", "wo-9"))

	due, err = repo.ListDue(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	// Purge clears old fired watches
	purged, err := repo.PurgeFiredBefore(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestAutomationRunRepository_Postgres(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.AutomationRuns()

	base := time.Now().UTC().Truncate(time.Millisecond)
	runs := []*models.AutomationRun{
		{
			ID:             uuid.New().String(),
			TenantID:       "tenant-a",
			WorkOrderID:    "wo-1",
			TriggerID:      "trg-1",
			TriggerName:    "invoice on done",
			Event:          models.TriggerOnEnter,
			ActionType:     "create_invoice_draft",
			Status:         models.RunStatusExecuted,
			IdempotencyKey: "wo/wo-1/trg/trg-1/1",
			Duration:       42 * time.Millisecond,
			StartedAt:      base.Add(-time.Hour),
			FinishedAt:     base.Add(-time.Hour + time.Second),
		},
		{
			ID:          uuid.New().String(),
			TenantID:    "tenant-a",
			WorkOrderID: "wo-1",
			TriggerID:   "trg-2",
			TriggerName: "sms on done",
			Event:       models.TriggerOnEnter,
			ActionType:  "send_sms",
			Status:      models.RunStatusSuppressed,
			Detail:      "unknown action type: send_sms",
			StartedAt:   base,
			FinishedAt:  base,
		},
	}
	for _, run := range runs {
		require.NoError(t, repo.Save(ctx, run))
	}

	listed, err := repo.ListByWorkOrder(ctx, "tenant-a", "wo-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)

	// Newest first
	assert.Equal(t, models.RunStatusSuppressed, listed[0].Status)
	assert.Equal(t, "unknown action type: send_sms", listed[0].Detail)
	assert.Equal(t, models.RunStatusExecuted, listed[1].Status)
	assert.Equal(t, 42*time.Millisecond, listed[1].Duration)

	// Retention purge
	purged, err := repo.PurgeFinishedBefore(ctx, base.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	listed, err = repo.ListByWorkOrder(ctx, "tenant-a", "wo-1")
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}
