// Package template provides templating for customer-facing message content.
package template

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/fieldline/fieldline/pkg/models"
)

// RenderWithContext renders a message template against one action invocation.
// Templates see the flattened work order document plus the trigger context,
// so "{{.work_order.number}}" and "{{.transition.to}}" resolve.
func RenderWithContext(input string, ictx models.InvocationContext) (string, error) {
	data := map[string]any{
		"work_order": ictx.Snapshot,
		"params":     ictx.Params,
		"trigger": map[string]any{
			"id":    ictx.Trigger.ID,
			"name":  ictx.Trigger.Name,
			"event": string(ictx.Event),
		},
		"transition": map[string]any{
			"to":          ictx.WorkOrder.Status,
			"occurred_at": ictx.OccurredAt.Format(time.RFC3339),
		},
	}

	return Render(input, data)
}

func Render(templateStr string, data any) (string, error) {
	tmpl, err := template.
		New("message").
		Funcs(template.FuncMap{
			"now": func() string {
				return time.Now().UTC().Format(time.RFC3339)
			},
		}).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template '%s': %w", templateStr, err)
	}

	var buf strings.Builder

	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("failed to execute template '%s': %w", templateStr, err)
	}

	return buf.String(), nil
}

// NeedsTemplating reports whether a message contains template actions worth
// rendering. Plain literals skip the parse entirely.
func NeedsTemplating(input string) bool {
	return strings.Contains(input, "{{")
}
