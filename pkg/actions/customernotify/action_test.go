package customernotify

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/persistence"
	"github.com/fieldline/fieldline/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testOrder() *models.WorkOrder {
	now := time.Now().UTC()

	return &models.WorkOrder{
		ID:            "wo-1",
		TenantID:      "tenant-a",
		Number:        "WO-1042",
		Title:         "Replace compressor",
		Status:        "done",
		CustomerID:    "cust-7",
		CustomerName:  "Acme Refrigeration",
		CustomerEmail: "ops@acme.example",
		StatusSince:   now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func invocationFor(order *models.WorkOrder, params map[string]any) models.InvocationContext {
	trigger := &models.WorkflowTrigger{
		ID:         "trg-2",
		TenantID:   order.TenantID,
		Name:       "Notify on done",
		StatusName: "done",
		Event:      models.TriggerOnEnter,
		Action:     models.ActionItem{Type: "notify_customer", Params: params},
	}

	return models.InvocationContext{
		ID:             "run-2",
		TenantID:       order.TenantID,
		WorkOrder:      order,
		Snapshot:       order.Document(),
		Trigger:        trigger,
		Event:          models.TriggerOnEnter,
		Params:         params,
		IdempotencyKey: "wo/wo-1/trg/trg-2/1714569600000000000",
		OccurredAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func queuedNotifications(t *testing.T, persist persistence.Persistence) []*models.Notification {
	t.Helper()

	notifications, err := persist.Notifications().ListByWorkOrder(context.Background(), "tenant-a", "wo-1")
	require.NoError(t, err)

	return notifications
}

func TestNewActionFactory(t *testing.T) {
	persist := file.NewPersistence(t.TempDir())
	factory := NewActionFactory(persist)

	assert.Equal(t, "notify_customer", factory.ID())

	schema := factory.Schema()
	properties, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, properties, "message")
	assert.Contains(t, properties, "channel")
}

func TestAction_Execute_QueuesNotification(t *testing.T) {
	ctx := context.Background()
	persist := file.NewPersistence(t.TempDir())
	order := testOrder()

	params := map[string]any{"message": "Job done"}
	action, err := NewAction(persist, params)
	require.NoError(t, err)

	result, err := action.Execute(ctx, invocationFor(order, params), testLogger())
	require.NoError(t, err)

	notifications := queuedNotifications(t, persist)
	require.Len(t, notifications, 1)

	got := notifications[0]
	assert.Equal(t, "Job done", got.Body)
	assert.Equal(t, "ops@acme.example", got.Recipient)
	assert.Equal(t, "cust-7", got.CustomerID)
	assert.False(t, got.IsRead)
	assert.Equal(t, models.NotificationChannelEmail, got.Channel)
	assert.Equal(t, models.NotificationStatusQueued, got.Status)
	assert.Equal(t, "Update on work order WO-1042", got.Subject)

	assert.Equal(t, got.ID, result.Output["notification_id"])
}

func TestAction_Execute_DefaultMessage(t *testing.T) {
	ctx := context.Background()
	persist := file.NewPersistence(t.TempDir())
	order := testOrder()

	action, err := NewAction(persist, nil)
	require.NoError(t, err)

	_, err = action.Execute(ctx, invocationFor(order, nil), testLogger())
	require.NoError(t, err)

	notifications := queuedNotifications(t, persist)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Work order WO-1042 is now done", notifications[0].Body)
}

func TestAction_Execute_TemplatedMessage(t *testing.T) {
	ctx := context.Background()
	persist := file.NewPersistence(t.TempDir())
	order := testOrder()

	params := map[string]any{"message": "Hi {{.work_order.customer_name}}, order {{.work_order.number}} is {{.transition.to}}"}
	action, err := NewAction(persist, params)
	require.NoError(t, err)

	_, err = action.Execute(ctx, invocationFor(order, params), testLogger())
	require.NoError(t, err)

	notifications := queuedNotifications(t, persist)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Hi Acme Refrigeration, order WO-1042 is done", notifications[0].Body)
}

func TestAction_Execute_IdempotentReplay(t *testing.T) {
	ctx := context.Background()
	persist := file.NewPersistence(t.TempDir())
	order := testOrder()

	params := map[string]any{"message": "Job done"}
	action, err := NewAction(persist, params)
	require.NoError(t, err)

	ictx := invocationFor(order, params)

	_, err = action.Execute(ctx, ictx, testLogger())
	require.NoError(t, err)

	second, err := action.Execute(ctx, ictx, testLogger())
	require.NoError(t, err)
	assert.Equal(t, true, second.Output["already_applied"])

	assert.Len(t, queuedNotifications(t, persist), 1)
}

func TestAction_Execute_PushChannel(t *testing.T) {
	ctx := context.Background()
	persist := file.NewPersistence(t.TempDir())
	order := testOrder()

	params := map[string]any{"message": "Job done", "channel": "push"}
	action, err := NewAction(persist, params)
	require.NoError(t, err)

	_, err = action.Execute(ctx, invocationFor(order, params), testLogger())
	require.NoError(t, err)

	notifications := queuedNotifications(t, persist)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationChannelPush, notifications[0].Channel)
	assert.Equal(t, "cust-7", notifications[0].Recipient)
}

func TestAction_Execute_NoRecipient(t *testing.T) {
	ctx := context.Background()
	persist := file.NewPersistence(t.TempDir())
	order := testOrder()
	order.CustomerEmail = ""

	action, err := NewAction(persist, nil)
	require.NoError(t, err)

	_, err = action.Execute(ctx, invocationFor(order, nil), testLogger())
	require.ErrorIs(t, err, ErrNoRecipient)

	assert.Empty(t, queuedNotifications(t, persist))
}
