package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fieldline/fieldline/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkOrderTransitioned_JSONSerialization(t *testing.T) {
	occurredAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	original := NewWorkOrderTransitioned(models.Transition{
		TenantID:    "tenant-1",
		WorkOrderID: "wo-123",
		From:        "in_progress",
		To:          "done",
		OccurredAt:  occurredAt,
	})

	jsonData, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"work_order_id":"wo-123"`)
	assert.Contains(t, string(jsonData), `"from":"in_progress"`)
	assert.Contains(t, string(jsonData), `"to":"done"`)

	var deserialized WorkOrderTransitioned

	err = json.Unmarshal(jsonData, &deserialized)
	require.NoError(t, err)

	assert.Equal(t, original.TenantID, deserialized.TenantID)
	assert.Equal(t, original.WorkOrderID, deserialized.WorkOrderID)
	assert.Equal(t, original.From, deserialized.From)
	assert.Equal(t, original.To, deserialized.To)
	assert.True(t, deserialized.OccurredAt.Equal(occurredAt))
	assert.Equal(t, WorkOrderTransitionedEvent, deserialized.GetType())
}

func TestWorkOrderTransitioned_Transition(t *testing.T) {
	occurredAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	event := NewWorkOrderTransitioned(models.Transition{
		TenantID:    "tenant-1",
		WorkOrderID: "wo-123",
		From:        "new",
		To:          "in_progress",
		OccurredAt:  occurredAt,
	})

	transition := event.Transition()
	assert.Equal(t, "tenant-1", transition.TenantID)
	assert.Equal(t, "wo-123", transition.WorkOrderID)
	assert.Equal(t, "new", transition.From)
	assert.Equal(t, "in_progress", transition.To)
	assert.True(t, transition.OccurredAt.Equal(occurredAt))
	assert.False(t, transition.NoChange())
}

func TestWorkOrderTransitioned_Validation(t *testing.T) {
	occurredAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		event       WorkOrderTransitioned
		wantErr     bool
		expectedErr string
	}{
		{
			name: "valid_event",
			event: NewWorkOrderTransitioned(models.Transition{
				TenantID:    "tenant-1",
				WorkOrderID: "wo-123",
				From:        "new",
				To:          "in_progress",
				OccurredAt:  occurredAt,
			}),
			wantErr: false,
		},
		{
			name: "creation_transition_has_no_from",
			event: NewWorkOrderTransitioned(models.Transition{
				TenantID:    "tenant-1",
				WorkOrderID: "wo-123",
				To:          "new",
				OccurredAt:  occurredAt,
			}),
			wantErr: false,
		},
		{
			name: "missing_tenant_id",
			event: WorkOrderTransitioned{
				BaseEvent:  BaseEvent{WorkOrderID: "wo-123"},
				To:         "done",
				OccurredAt: occurredAt,
			},
			wantErr:     true,
			expectedErr: "tenant_id is required",
		},
		{
			name: "missing_work_order_id",
			event: WorkOrderTransitioned{
				BaseEvent:  BaseEvent{TenantID: "tenant-1"},
				To:         "done",
				OccurredAt: occurredAt,
			},
			wantErr:     true,
			expectedErr: "work_order_id is required",
		},
		{
			name: "missing_to_status",
			event: WorkOrderTransitioned{
				BaseEvent:  BaseEvent{TenantID: "tenant-1", WorkOrderID: "wo-123"},
				From:       "new",
				OccurredAt: occurredAt,
			},
			wantErr:     true,
			expectedErr: "to status is required",
		},
		{
			name: "missing_occurred_at",
			event: WorkOrderTransitioned{
				BaseEvent: BaseEvent{TenantID: "tenant-1", WorkOrderID: "wo-123"},
				From:      "new",
				To:        "done",
			},
			wantErr:     true,
			expectedErr: "occurred_at is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStatusTimeoutDue_JSONSerialization(t *testing.T) {
	enteredAt := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	dueAt := enteredAt.Add(48 * time.Hour)

	original := NewStatusTimeoutDue(models.StatusWatch{
		ID:          "watch-1",
		TenantID:    "tenant-1",
		WorkOrderID: "wo-123",
		StatusName:  "waiting_parts",
		TriggerID:   "trg-9",
		EnteredAt:   enteredAt,
		DueAt:       dueAt,
	})

	jsonData, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"watch_id":"watch-1"`)
	assert.Contains(t, string(jsonData), `"status_name":"waiting_parts"`)

	var deserialized StatusTimeoutDue

	err = json.Unmarshal(jsonData, &deserialized)
	require.NoError(t, err)

	assert.Equal(t, original.WatchID, deserialized.WatchID)
	assert.Equal(t, original.TriggerID, deserialized.TriggerID)
	assert.Equal(t, original.StatusName, deserialized.StatusName)
	assert.True(t, deserialized.EnteredAt.Equal(enteredAt))
	assert.True(t, deserialized.DueAt.Equal(dueAt))
	assert.Equal(t, StatusTimeoutDueEvent, deserialized.GetType())
}

func TestStatusTimeoutDue_Validation(t *testing.T) {
	tests := []struct {
		name        string
		event       StatusTimeoutDue
		wantErr     bool
		expectedErr string
	}{
		{
			name: "valid_event",
			event: NewStatusTimeoutDue(models.StatusWatch{
				ID:          "watch-1",
				TenantID:    "tenant-1",
				WorkOrderID: "wo-123",
				StatusName:  "waiting_parts",
				TriggerID:   "trg-9",
			}),
			wantErr: false,
		},
		{
			name: "missing_trigger_id",
			event: StatusTimeoutDue{
				BaseEvent:  BaseEvent{TenantID: "tenant-1", WorkOrderID: "wo-123"},
				WatchID:    "watch-1",
				StatusName: "waiting_parts",
			},
			wantErr:     true,
			expectedErr: "trigger_id is required",
		},
		{
			name: "missing_status_name",
			event: StatusTimeoutDue{
				BaseEvent: BaseEvent{TenantID: "tenant-1", WorkOrderID: "wo-123"},
				WatchID:   "watch-1",
				TriggerID: "trg-9",
			},
			wantErr:     true,
			expectedErr: "status_name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAutomationCompleted_JSONSerialization(t *testing.T) {
	original := AutomationCompleted{
		BaseEvent: NewBaseEvent(AutomationCompletedEvent, "tenant-1", "wo-123"),
		From:      "in_progress",
		To:        "done",
		Executed:  2,
		Failed:    1,
		Runs: []RunSummary{
			{TriggerID: "trg-1", TriggerName: "Draft invoice", ActionType: "create_invoice_draft", Status: models.RunStatusExecuted},
			{TriggerID: "trg-2", TriggerName: "Notify customer", ActionType: "notify_customer", Status: models.RunStatusExecuted},
			{TriggerID: "trg-3", TriggerName: "Broken", ActionType: "notify_customer", Status: models.RunStatusFailed, Detail: "boom"},
		},
	}

	jsonData, err := json.Marshal(original)
	require.NoError(t, err)
	assert.NotContains(t, string(jsonData), `"event"`)

	var deserialized AutomationCompleted

	err = json.Unmarshal(jsonData, &deserialized)
	require.NoError(t, err)

	assert.Equal(t, original.Executed, deserialized.Executed)
	assert.Equal(t, original.Failed, deserialized.Failed)
	assert.Len(t, deserialized.Runs, 3)
	assert.Equal(t, original.Runs[2].Detail, deserialized.Runs[2].Detail)
	assert.Equal(t, AutomationCompletedEvent, deserialized.GetType())

	timeout := AutomationCompleted{
		BaseEvent: NewBaseEvent(AutomationCompletedEvent, "tenant-1", "wo-123"),
		Event:     models.TriggerOnTimeout,
		To:        "waiting_parts",
		Executed:  1,
	}

	jsonData, err = json.Marshal(timeout)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"event":"on_timeout"`)
}

func TestEventCreationDefaults(t *testing.T) {
	event := NewWorkOrderTransitioned(models.Transition{
		TenantID:    "tenant-1",
		WorkOrderID: "wo-123",
		From:        "new",
		To:          "in_progress",
		OccurredAt:  time.Now().UTC(),
	})

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, WorkOrderTransitionedEvent, event.Type)
	assert.WithinDuration(t, time.Now(), event.Timestamp, 1*time.Second)
	assert.NotNil(t, event.Metadata)
}
