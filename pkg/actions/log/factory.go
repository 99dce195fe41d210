package log

import (
	"github.com/fieldline/fieldline/pkg/protocol"
)

// ActionFactory is the factory for creating log action instances.
type ActionFactory struct{}

func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

// ID returns the action type triggers reference.
func (*ActionFactory) ID() string {
	return "log"
}

// Create creates a new log action with the provided configuration.
func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config), nil
}

// Schema returns the JSON schema for the action params.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "The message to log. Supports templating against the work order document.",
				"examples": []string{
					"Reached final status",
					"Order {{.work_order.number}} entered {{.transition.to}}",
				},
			},
			"level": map[string]any{
				"type":        "string",
				"description": "Log level for the message",
				"default":     "info",
				"enum":        []string{"debug", "info", "warn", "warning", "error"},
			},
		},
		"additionalProperties": false,
	}
}
