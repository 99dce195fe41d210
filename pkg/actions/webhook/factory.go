package webhook

import (
	"github.com/fieldline/fieldline/pkg/protocol"
)

// ActionFactory creates webhook delivery actions.
type ActionFactory struct{}

func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

// ID returns the action type triggers reference.
func (f *ActionFactory) ID() string {
	return "webhook"
}

// Create creates a new webhook action with the provided configuration.
func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(config)
}

// Schema returns the JSON schema for the action params.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "Endpoint to deliver the event to. Supports templating against the work order document.",
				"examples": []string{
					"https://hooks.example.com/fieldline",
					"https://crm.example.com/orders/{{.work_order.number}}/events",
				},
			},
			"method": map[string]any{
				"type":        "string",
				"description": "HTTP method for the delivery",
				"default":     "POST",
				"enum":        []string{"POST", "PUT", "PATCH"},
			},
			"headers": map[string]any{
				"type":        "object",
				"description": "Headers sent with the request. Values support templating.",
			},
			"timeout": map[string]any{
				"type":        "number",
				"description": "Request timeout in seconds",
				"default":     30,
				"minimum":     1,
				"maximum":     300,
			},
			"retries": map[string]any{
				"type":        "object",
				"description": "Retry behavior for server errors and network failures",
				"properties": map[string]any{
					"attempts": map[string]any{
						"type":        "number",
						"description": "Delivery attempts before the run is marked failed",
						"default":     1,
						"minimum":     1,
						"maximum":     10,
					},
					"delay": map[string]any{
						"type":        "number",
						"description": "Delay between attempts in milliseconds",
						"default":     1000,
						"minimum":     0,
						"maximum":     30000,
					},
				},
			},
		},
		"required":             []string{"url"},
		"additionalProperties": false,
	}
}
