// Package automation implements the workflow automation engine: condition
// evaluation, trigger execution, and transition/timeout dispatch.
package automation

import (
	"fmt"

	"github.com/fieldline/fieldline/pkg/models"
)

// EvaluateConditions decides a trigger's condition list against a work-order
// snapshot document. An empty list always fires. A non-empty list is AND
// semantics with short-circuit: the first false condition stops evaluation.
// Pure: no side effects, no snapshot mutation, deterministic per document.
//
// An evaluation error names the failing condition so the caller can record
// the suppression with a reason instead of guessing.
func EvaluateConditions(conditions []models.Condition, doc map[string]any) (bool, error) {
	for i, c := range conditions {
		ok, err := c.Eval(doc)
		if err != nil {
			return false, fmt.Errorf("condition %d (%s %s): %w", i, c.Field, c.Op, err)
		}

		if !ok {
			return false, nil
		}
	}

	return true, nil
}
