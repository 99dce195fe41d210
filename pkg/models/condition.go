package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ConditionOp is the comparison a condition applies.
type ConditionOp string

const (
	OpEqual          ConditionOp = "eq"
	OpNotEqual       ConditionOp = "neq"
	OpGreater        ConditionOp = "gt"
	OpGreaterOrEqual ConditionOp = "gte"
	OpLess           ConditionOp = "lt"
	OpLessOrEqual    ConditionOp = "lte"
	OpContains       ConditionOp = "contains"
	OpExists         ConditionOp = "exists"
	OpAbsent         ConditionOp = "absent"
)

// Valid reports whether the operator is one of the closed set.
func (o ConditionOp) Valid() bool {
	switch o {
	case OpEqual, OpNotEqual, OpGreater, OpGreaterOrEqual, OpLess, OpLessOrEqual,
		OpContains, OpExists, OpAbsent:
		return true
	}

	return false
}

// Condition is a single predicate over a work-order snapshot document.
// Field is a dotted path into the document (e.g. "priority" or
// "custom_fields.zone"). Ordered operators coerce both sides to float64.
type Condition struct {
	Field string      `json:"field" validate:"required"`
	Op    ConditionOp `json:"op"    validate:"required"`
	Value any         `json:"value,omitempty"`
}

var (
	ErrConditionFieldRequired = errors.New("condition field is required")
	ErrConditionOpInvalid     = errors.New("condition operator is not recognized")
)

// Validate checks the condition is structurally sound.
func (c Condition) Validate() error {
	if strings.TrimSpace(c.Field) == "" {
		return ErrConditionFieldRequired
	}

	if !c.Op.Valid() {
		return ErrConditionOpInvalid
	}

	return nil
}

// Eval decides the condition against a snapshot document. It is pure: no
// side effects, no mutation, deterministic for a given document. A field
// missing from the document is an evaluation error for every operator except
// exists/absent, so the caller can suppress the trigger with a warning
// instead of guessing.
func (c Condition) Eval(doc map[string]any) (bool, error) {
	value, found := lookupPath(doc, c.Field)

	switch c.Op {
	case OpExists:
		return found, nil
	case OpAbsent:
		return !found, nil
	}

	if !found {
		return false, fmt.Errorf("field %q is not present in the work order snapshot", c.Field)
	}

	switch c.Op {
	case OpEqual:
		return looseEqual(value, c.Value), nil
	case OpNotEqual:
		return !looseEqual(value, c.Value), nil
	case OpGreater, OpGreaterOrEqual, OpLess, OpLessOrEqual:
		left, err := toFloat(value)
		if err != nil {
			return false, fmt.Errorf("field %q: %w", c.Field, err)
		}

		right, err := toFloat(c.Value)
		if err != nil {
			return false, fmt.Errorf("condition value for %q: %w", c.Field, err)
		}

		switch c.Op {
		case OpGreater:
			return left > right, nil
		case OpGreaterOrEqual:
			return left >= right, nil
		case OpLess:
			return left < right, nil
		default:
			return left <= right, nil
		}
	case OpContains:
		return contains(value, c.Value)
	default:
		return false, fmt.Errorf("%w: %q", ErrConditionOpInvalid, c.Op)
	}
}

// lookupPath walks a dotted path through nested map[string]any values.
func lookupPath(doc map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var current any = doc

	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// looseEqual compares scalars the way JSON documents do: numbers compare as
// float64 regardless of concrete Go type, everything else by string form.
func looseEqual(a, b any) bool {
	if af, err := toFloat(a); err == nil {
		if bf, err := toFloat(b); err == nil {
			return af == bf
		}
	}

	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", n)
		}

		return f, nil
	default:
		return 0, fmt.Errorf("value of type %T is not numeric", v)
	}
}

func contains(haystack, needle any) (bool, error) {
	switch h := haystack.(type) {
	case string:
		return strings.Contains(h, fmt.Sprintf("%v", needle)), nil
	case []any:
		for _, item := range h {
			if looseEqual(item, needle) {
				return true, nil
			}
		}

		return false, nil
	case []string:
		for _, item := range h {
			if item == fmt.Sprintf("%v", needle) {
				return true, nil
			}
		}

		return false, nil
	default:
		return false, fmt.Errorf("contains is not defined for values of type %T", haystack)
	}
}
