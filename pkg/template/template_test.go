package template

import (
	"testing"
	"time"

	"github.com/fieldline/fieldline/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInvocation() models.InvocationContext {
	workOrder := &models.WorkOrder{
		ID:       "wo-1",
		TenantID: "tenant-1",
		Number:   "WO-1042",
		Title:    "Replace compressor",
		Status:   "done",
	}

	return models.InvocationContext{
		TenantID:  "tenant-1",
		WorkOrder: workOrder,
		Snapshot:  workOrder.Document(),
		Trigger: &models.WorkflowTrigger{
			ID:    "trg-1",
			Name:  "Notify on done",
			Event: models.TriggerOnEnter,
		},
		Event:      models.TriggerOnEnter,
		Params:     map[string]any{"message": "unused here"},
		OccurredAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRenderWithContext(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain_literal",
			input:    "Job done",
			expected: "Job done",
		},
		{
			name:     "work_order_fields",
			input:    "Work order {{.work_order.number}} is now {{.transition.to}}",
			expected: "Work order WO-1042 is now done",
		},
		{
			name:     "trigger_context",
			input:    "fired by {{.trigger.name}} on {{.trigger.event}}",
			expected: "fired by Notify on done on on_enter",
		},
		{
			name:     "occurred_at",
			input:    "at {{.transition.occurred_at}}",
			expected: "at 2024-05-01T12:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderWithContext(tt.input, testInvocation())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRender_ParseError(t *testing.T) {
	_, err := Render("{{.unterminated", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse template")
}

func TestNeedsTemplating(t *testing.T) {
	assert.False(t, NeedsTemplating("Job done"))
	assert.True(t, NeedsTemplating("Work order {{.work_order.number}}"))
}
