package customernotify

import (
	"github.com/fieldline/fieldline/pkg/persistence"
	"github.com/fieldline/fieldline/pkg/protocol"
)

// ActionFactory creates customer notification actions bound to the store.
type ActionFactory struct {
	persist persistence.Persistence
}

func NewActionFactory(persist persistence.Persistence) *ActionFactory {
	return &ActionFactory{persist: persist}
}

// ID returns the action type triggers reference.
func (f *ActionFactory) ID() string {
	return "notify_customer"
}

// Create creates a new notification action with the provided configuration.
func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(f.persist, config)
}

// Schema returns the JSON schema for the action params.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "Message body. Supports templating against the work order document.",
				"examples": []string{
					"Job done",
					"Work order {{.work_order.number}} is now {{.transition.to}}",
				},
			},
			"subject": map[string]any{
				"type":        "string",
				"description": "Message subject line. Defaults to a line naming the work order.",
			},
			"channel": map[string]any{
				"type":        "string",
				"description": "Delivery channel for the notification",
				"default":     "email",
				"enum":        []string{"email", "push"},
			},
		},
		"additionalProperties": false,
	}
}
