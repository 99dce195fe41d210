package registry

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAction struct {
	config map[string]any
}

func (m *mockAction) Execute(ctx context.Context, ictx models.InvocationContext, logger *slog.Logger) (models.ActionResult, error) {
	return models.ActionResult{Detail: "ok"}, nil
}

type mockActionFactory struct {
	id string
}

func (f *mockActionFactory) ID() string {
	return f.id
}

func (f *mockActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return &mockAction{config: config}, nil
}

func (f *mockActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type": "string",
			},
			"labor_rate": map[string]any{
				"type":    "number",
				"minimum": 0,
			},
		},
		"required":             []string{"message"},
		"additionalProperties": false,
	}
}

func newTestRegistry() *Registry {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	return NewRegistry(logger)
}

func TestRegistry_RegisterAndCreateAction(t *testing.T) {
	reg := newTestRegistry()
	reg.RegisterAction(&mockActionFactory{id: "mock"})

	action, err := reg.CreateAction("mock", map[string]any{"message": "hello"})
	require.NoError(t, err)

	mockAct, ok := action.(*mockAction)
	require.True(t, ok)
	assert.Equal(t, "hello", mockAct.config["message"])
}

func TestRegistry_CreateUnregisteredAction(t *testing.T) {
	reg := newTestRegistry()

	_, err := reg.CreateAction("send_sms", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'send_sms' not registered")
}

func TestRegistry_IsActionRegistered(t *testing.T) {
	reg := newTestRegistry()
	reg.RegisterAction(&mockActionFactory{id: "mock"})

	assert.True(t, reg.IsActionRegistered("mock"))
	assert.False(t, reg.IsActionRegistered("send_sms"))
}

func TestRegistry_AvailableActions(t *testing.T) {
	reg := newTestRegistry()
	reg.RegisterAction(&mockActionFactory{id: "notify_customer"})
	reg.RegisterAction(&mockActionFactory{id: "create_invoice_draft"})
	reg.RegisterAction(&mockActionFactory{id: "log"})

	assert.Equal(t, []string{"create_invoice_draft", "log", "notify_customer"}, reg.AvailableActions())
}

func TestRegistry_HealthCheck(t *testing.T) {
	reg := newTestRegistry()

	message, ok := reg.HealthCheck()
	assert.False(t, ok)
	assert.Equal(t, "No action types registered", message)

	reg.RegisterAction(&mockActionFactory{id: "log"})

	message, ok = reg.HealthCheck()
	assert.True(t, ok)
	assert.Contains(t, message, "1 action types registered")
	assert.Contains(t, message, "log")
}

func TestRegistry_ValidateActionParams(t *testing.T) {
	reg := newTestRegistry()
	reg.RegisterAction(&mockActionFactory{id: "mock"})

	tests := []struct {
		name        string
		actionType  string
		params      map[string]any
		wantErr     bool
		expectedErr string
	}{
		{
			name:       "valid_params",
			actionType: "mock",
			params:     map[string]any{"message": "Job done", "labor_rate": 50.0},
			wantErr:    false,
		},
		{
			name:        "missing_required_field",
			actionType:  "mock",
			params:      map[string]any{"labor_rate": 50.0},
			wantErr:     true,
			expectedErr: "message is required",
		},
		{
			name:        "wrong_type",
			actionType:  "mock",
			params:      map[string]any{"message": "Job done", "labor_rate": "fifty"},
			wantErr:     true,
			expectedErr: "invalid params for action 'mock'",
		},
		{
			name:        "unknown_extra_field",
			actionType:  "mock",
			params:      map[string]any{"message": "Job done", "channel": "sms"},
			wantErr:     true,
			expectedErr: "invalid params for action 'mock'",
		},
		{
			name:        "nil_params_fail_required",
			actionType:  "mock",
			params:      nil,
			wantErr:     true,
			expectedErr: "message is required",
		},
		{
			name:        "unregistered_action_type",
			actionType:  "send_sms",
			params:      map[string]any{},
			wantErr:     true,
			expectedErr: "'send_sms' not registered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.ValidateActionParams(tt.actionType, tt.params)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
