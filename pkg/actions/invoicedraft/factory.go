package invoicedraft

import (
	"github.com/fieldline/fieldline/pkg/numbering"
	"github.com/fieldline/fieldline/pkg/persistence"
	"github.com/fieldline/fieldline/pkg/protocol"
)

// DefaultLaborRate prices labor when neither the trigger params nor the work
// order carry an hourly rate.
const DefaultLaborRate = 50.0

const defaultDueInDays = 30

// ActionFactory creates invoice draft actions bound to the shared stores.
type ActionFactory struct {
	persist     persistence.Persistence
	numbers     *numbering.Allocator
	defaultRate float64
}

// NewActionFactory wires the factory. A non-positive defaultRate falls back
// to DefaultLaborRate.
func NewActionFactory(persist persistence.Persistence, numbers *numbering.Allocator, defaultRate float64) *ActionFactory {
	if defaultRate <= 0 {
		defaultRate = DefaultLaborRate
	}

	return &ActionFactory{
		persist:     persist,
		numbers:     numbers,
		defaultRate: defaultRate,
	}
}

// ID returns the action type triggers reference.
func (f *ActionFactory) ID() string {
	return "create_invoice_draft"
}

// Create creates a new invoice draft action with the provided configuration.
func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	return NewAction(f.persist, f.numbers, f.defaultRate, config)
}

// Schema returns the JSON schema for the action params.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"labor_rate": map[string]any{
				"type":        "number",
				"description": "Hourly rate applied to every invoice line. Falls back to the work order rate, then the configured default.",
				"minimum":     0,
			},
			"due_in_days": map[string]any{
				"type":        "integer",
				"description": "Days between the issue date and the due date",
				"default":     30,
				"minimum":     1,
			},
		},
		"additionalProperties": false,
	}
}
