// Package registry holds the action handler registry the dispatch loop
// resolves action types against.
package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/fieldline/fieldline/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

type Registry struct {
	logger          *slog.Logger
	actionFactories map[string]protocol.ActionFactory
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:          log,
		actionFactories: make(map[string]protocol.ActionFactory),
	}
}

func (r *Registry) RegisterAction(actionFactory protocol.ActionFactory) {
	r.actionFactories[actionFactory.ID()] = actionFactory
}

func (r *Registry) CreateAction(actionType string, config map[string]any) (protocol.Action, error) {
	factory, ok := r.actionFactories[actionType]
	if !ok {
		return nil, fmt.Errorf("action type '%s' not registered", actionType)
	}

	return factory.Create(config)
}

func (r *Registry) IsActionRegistered(actionType string) bool {
	_, exists := r.actionFactories[actionType]

	return exists
}

// AvailableActions lists registered action types in stable order.
func (r *Registry) AvailableActions() []string {
	types := make([]string, 0, len(r.actionFactories))
	for actionType := range r.actionFactories {
		types = append(types, actionType)
	}

	sort.Strings(types)

	return types
}

// HealthCheck reports whether the registry is usable: a registry with no
// actions means startup wiring was skipped and every trigger would suppress.
func (r *Registry) HealthCheck() (string, bool) {
	if len(r.actionFactories) == 0 {
		return "No action types registered", false
	}

	return fmt.Sprintf("%d action types registered: %s",
		len(r.actionFactories), strings.Join(r.AvailableActions(), ", ")), true
}

// ValidateActionParams checks the params a trigger carries against the JSON
// schema its action factory publishes. Called at trigger create/update so a
// misconfigured action never reaches dispatch.
func (r *Registry) ValidateActionParams(actionType string, params map[string]any) error {
	factory, ok := r.actionFactories[actionType]
	if !ok {
		return fmt.Errorf("action type '%s' not registered", actionType)
	}

	if params == nil {
		params = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(factory.Schema())
	dataLoader := gojsonschema.NewGoLoader(params)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		descriptions := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			descriptions = append(descriptions, desc.String())
		}

		return fmt.Errorf("invalid params for action '%s': %s", actionType, strings.Join(descriptions, "; "))
	}

	return nil
}
