// Package protocol defines the contracts action plugins implement.
package protocol

import (
	"context"
	"log/slog"

	"github.com/fieldline/fieldline/pkg/models"
)

type Action interface {
	Execute(ctx context.Context, ictx models.InvocationContext, logger *slog.Logger) (models.ActionResult, error)
}

type ActionFactory interface {
	// Create builds an action instance from the trigger's params. Params are
	// already schema-validated when the trigger was saved; Create may still
	// reject values only a handler can judge.
	Create(config map[string]any) (Action, error)
	// ID is the action type string triggers reference.
	ID() string
	// Schema is the JSON schema the trigger CRUD validates params against.
	Schema() map[string]any
}
