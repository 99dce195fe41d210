// Package log provides a diagnostic action that writes a structured log line
// with the work order context.
package log

import (
	"context"
	"fmt"
	"log/slog"

	applog "github.com/fieldline/fieldline/pkg/log"
	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/template"
)

type Action struct {
	message string
	level   string
}

func NewAction(config map[string]any) *Action {
	if config == nil {
		config = map[string]any{}
	}

	message, _ := config["message"].(string)
	level, _ := config["level"].(string)

	if level == "" {
		level = "info"
	}

	return &Action{message: message, level: level}
}

func (a *Action) Execute(ctx context.Context, ictx models.InvocationContext, logger *slog.Logger) (models.ActionResult, error) {
	logger = logger.With("action_type", "log")

	message := a.message
	if message == "" {
		message = fmt.Sprintf("Work order %s dispatched %s trigger %q", ictx.WorkOrder.Number, ictx.Event, ictx.Trigger.Name)
	} else if template.NeedsTemplating(message) {
		rendered, err := template.RenderWithContext(message, ictx)
		if err != nil {
			return models.ActionResult{}, fmt.Errorf("failed to render message: %w", err)
		}

		message = rendered
	}

	args := []any{
		"work_order_id", ictx.WorkOrder.ID,
		"status", ictx.WorkOrder.Status,
		"trigger_id", ictx.Trigger.ID,
	}

	logger.Log(ctx, applog.ParseLevel(a.level), message, args...)

	return models.ActionResult{
		Detail: message,
		Output: map[string]any{"message": message, "level": a.level},
	}, nil
}
