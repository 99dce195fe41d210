package invoicedraft

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/numbering"
	"github.com/fieldline/fieldline/pkg/persistence"
	"github.com/fieldline/fieldline/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func seedWorkOrder(t *testing.T, persist persistence.Persistence, minutes ...int) *models.WorkOrder {
	t.Helper()

	ctx := context.Background()
	now := time.Now().UTC()

	order := &models.WorkOrder{
		ID:           "wo-1",
		TenantID:     "tenant-a",
		Number:       "WO-1042",
		Title:        "Replace compressor",
		Status:       "done",
		CustomerID:   "cust-7",
		CustomerName: "Acme Refrigeration",
		StatusSince:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, persist.WorkOrders().Save(ctx, order))

	for i, m := range minutes {
		entry := &models.TimeEntry{
			ID:          "te-" + string(rune('1'+i)),
			TenantID:    order.TenantID,
			WorkOrderID: order.ID,
			UserID:      "tech-1",
			Minutes:     m,
			CreatedAt:   now.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, persist.TimeEntries().Save(ctx, entry))
	}

	return order
}

func invocationFor(order *models.WorkOrder, params map[string]any) models.InvocationContext {
	trigger := &models.WorkflowTrigger{
		ID:         "trg-1",
		TenantID:   order.TenantID,
		Name:       "Draft invoice on done",
		StatusName: "done",
		Event:      models.TriggerOnEnter,
		Action:     models.ActionItem{Type: "create_invoice_draft", Params: params},
	}

	return models.InvocationContext{
		ID:             "run-1",
		TenantID:       order.TenantID,
		WorkOrder:      order,
		Snapshot:       order.Document(),
		Trigger:        trigger,
		Event:          models.TriggerOnEnter,
		Params:         params,
		IdempotencyKey: "wo/wo-1/trg/trg-1/1714569600000000000",
		OccurredAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewActionFactory(t *testing.T) {
	persist := file.NewPersistence(t.TempDir())
	factory := NewActionFactory(persist, numbering.NewAllocator(), 0)

	assert.Equal(t, "create_invoice_draft", factory.ID())

	schema := factory.Schema()
	properties, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, properties, "labor_rate")
	assert.Contains(t, properties, "due_in_days")
}

func TestActionFactory_Create(t *testing.T) {
	persist := file.NewPersistence(t.TempDir())
	factory := NewActionFactory(persist, numbering.NewAllocator(), DefaultLaborRate)

	tests := []struct {
		name   string
		config map[string]any
	}{
		{name: "nil_config", config: nil},
		{name: "empty_config", config: map[string]any{}},
		{name: "pinned_rate", config: map[string]any{"labor_rate": 75.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := factory.Create(tt.config)
			require.NoError(t, err)
			assert.IsType(t, &Action{}, action)
		})
	}
}

func TestAction_Execute_DraftsInvoice(t *testing.T) {
	ctx := context.Background()
	persist := file.NewPersistence(t.TempDir())
	order := seedWorkOrder(t, persist, 150, 60)

	action, err := NewAction(persist, numbering.NewAllocator(), DefaultLaborRate, nil)
	require.NoError(t, err)

	ictx := invocationFor(order, nil)

	result, err := action.Execute(ctx, ictx, testLogger())
	require.NoError(t, err)

	invoice, err := persist.Invoices().GetByIdempotencyKey(ctx, "tenant-a", ictx.IdempotencyKey)
	require.NoError(t, err)
	require.NotNil(t, invoice)

	assert.Equal(t, models.InvoiceStatusDraft, invoice.Status)
	assert.Equal(t, "wo-1", invoice.WorkOrderID)
	assert.Equal(t, "cust-7", invoice.CustomerID)
	require.Len(t, invoice.Lines, 2)

	assert.Equal(t, "labor", invoice.Lines[0].ItemType)
	assert.InDelta(t, 2.5, invoice.Lines[0].Quantity, 0.001)
	assert.InDelta(t, 50.0, invoice.Lines[0].UnitPrice, 0.001)
	assert.InDelta(t, 125.0, invoice.Lines[0].Amount, 0.001)
	assert.Equal(t, "labor", invoice.Lines[1].ItemType)
	assert.InDelta(t, 1.0, invoice.Lines[1].Quantity, 0.001)
	assert.InDelta(t, 50.0, invoice.Lines[1].Amount, 0.001)

	assert.InDelta(t, 175.0, invoice.Subtotal, 0.001)
	assert.InDelta(t, 0.0, invoice.TaxTotal, 0.001)
	assert.InDelta(t, 0.0, invoice.DiscountTotal, 0.001)
	assert.InDelta(t, 175.0, invoice.Total, 0.001)
	assert.InDelta(t, 0.0, invoice.AmountPaid, 0.001)
	assert.InDelta(t, 175.0, invoice.AmountDue, 0.001)

	assert.True(t, strings.HasPrefix(invoice.Number, "INV-"))
	assert.True(t, invoice.DueAt.Equal(invoice.IssuedAt.AddDate(0, 0, 30)))

	assert.Equal(t, invoice.Number, result.Output["invoice_number"])
	assert.InDelta(t, 175.0, result.Output["total"].(float64), 0.001)
}

func TestAction_Execute_IdempotentReplay(t *testing.T) {
	ctx := context.Background()
	persist := file.NewPersistence(t.TempDir())
	order := seedWorkOrder(t, persist, 150, 60)

	action, err := NewAction(persist, numbering.NewAllocator(), DefaultLaborRate, nil)
	require.NoError(t, err)

	ictx := invocationFor(order, nil)

	first, err := action.Execute(ctx, ictx, testLogger())
	require.NoError(t, err)

	second, err := action.Execute(ctx, ictx, testLogger())
	require.NoError(t, err)

	assert.Equal(t, first.Output["invoice_number"], second.Output["invoice_number"])
	assert.Equal(t, true, second.Output["already_applied"])

	invoices, err := persist.Invoices().ListByWorkOrder(ctx, "tenant-a", "wo-1")
	require.NoError(t, err)
	assert.Len(t, invoices, 1)
}

func TestAction_Execute_NoTimeEntries(t *testing.T) {
	ctx := context.Background()
	persist := file.NewPersistence(t.TempDir())
	order := seedWorkOrder(t, persist)

	action, err := NewAction(persist, numbering.NewAllocator(), DefaultLaborRate, nil)
	require.NoError(t, err)

	result, err := action.Execute(ctx, invocationFor(order, nil), testLogger())
	require.NoError(t, err)
	assert.Equal(t, "no time entries to bill", result.Detail)

	invoices, err := persist.Invoices().ListByWorkOrder(ctx, "tenant-a", "wo-1")
	require.NoError(t, err)
	assert.Empty(t, invoices)
}

func TestAction_RateResolution(t *testing.T) {
	tests := []struct {
		name         string
		params       map[string]any
		workOrder    float64
		expectedRate float64
	}{
		{
			name:         "params_rate_wins",
			params:       map[string]any{"labor_rate": 80.0},
			workOrder:    65.0,
			expectedRate: 80.0,
		},
		{
			name:         "work_order_rate_next",
			params:       nil,
			workOrder:    65.0,
			expectedRate: 65.0,
		},
		{
			name:         "default_rate_last",
			params:       nil,
			workOrder:    0,
			expectedRate: DefaultLaborRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			persist := file.NewPersistence(t.TempDir())
			order := seedWorkOrder(t, persist, 60)
			order.HourlyRate = tt.workOrder
			require.NoError(t, persist.WorkOrders().Save(ctx, order))

			action, err := NewAction(persist, numbering.NewAllocator(), DefaultLaborRate, tt.params)
			require.NoError(t, err)

			_, err = action.Execute(ctx, invocationFor(order, tt.params), testLogger())
			require.NoError(t, err)

			invoice, err := persist.Invoices().GetByIdempotencyKey(ctx, "tenant-a", "wo/wo-1/trg/trg-1/1714569600000000000")
			require.NoError(t, err)
			require.NotNil(t, invoice)
			assert.InDelta(t, tt.expectedRate, invoice.Lines[0].UnitPrice, 0.001)
		})
	}
}
