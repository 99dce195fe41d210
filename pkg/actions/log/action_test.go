package log_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logaction "github.com/fieldline/fieldline/pkg/actions/log"
	"github.com/fieldline/fieldline/pkg/models"
)

func invocationFor(params map[string]any) models.InvocationContext {
	order := &models.WorkOrder{
		ID:           "wo-1",
		TenantID:     "tenant-a",
		Number:       "WO-1042",
		Title:        "Walk-in cooler repair",
		Status:       "done",
		CustomerName: "Acme Refrigeration",
	}

	return models.InvocationContext{
		ID:       "run-1",
		TenantID: "tenant-a",
		WorkOrder: order,
		Snapshot: order.Document(),
		Trigger: &models.WorkflowTrigger{
			ID:         "trg-1",
			Name:       "audit trail",
			StatusName: "done",
			Event:      models.TriggerOnEnter,
		},
		Event:          models.TriggerOnEnter,
		Params:         params,
		IdempotencyKey: "wo/wo-1/trg/trg-1/1714569600000000000",
		OccurredAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewActionFactory(t *testing.T) {
	factory := logaction.NewActionFactory()

	assert.Equal(t, "log", factory.ID())

	schema := factory.Schema()
	properties, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, properties, "message")
	assert.Contains(t, properties, "level")
	assert.Equal(t, false, schema["additionalProperties"])
}

func TestAction_Execute_DefaultMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	action := logaction.NewAction(nil)

	result, err := action.Execute(context.Background(), invocationFor(nil), logger)
	require.NoError(t, err)

	assert.Equal(t, `Work order WO-1042 dispatched on_enter trigger "audit trail"`, result.Detail)
	assert.Equal(t, "info", result.Output["level"])
	assert.Contains(t, buf.String(), "work_order_id=wo-1")
	assert.Contains(t, buf.String(), "trigger_id=trg-1")
}

func TestAction_Execute_TemplatedMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	action := logaction.NewAction(map[string]any{
		"message": "Order {{.work_order.number}} entered {{.transition.to}}",
	})

	result, err := action.Execute(context.Background(), invocationFor(map[string]any{}), logger)
	require.NoError(t, err)

	assert.Equal(t, "Order WO-1042 entered done", result.Detail)
	assert.Equal(t, "Order WO-1042 entered done", result.Output["message"])
}

func TestAction_Execute_BadTemplate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	action := logaction.NewAction(map[string]any{"message": "{{.work_order.number"})

	_, err := action.Execute(context.Background(), invocationFor(nil), logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to render message")
}

func TestAction_Execute_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{level: "debug", want: "level=DEBUG"},
		{level: "info", want: "level=INFO"},
		{level: "warn", want: "level=WARN"},
		{level: "warning", want: "level=WARN"},
		{level: "error", want: "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			action := logaction.NewAction(map[string]any{"message": "checkpoint", "level": tt.level})

			result, err := action.Execute(context.Background(), invocationFor(nil), logger)
			require.NoError(t, err)

			assert.Equal(t, tt.level, result.Output["level"])
			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), "checkpoint")
		})
	}
}
