package models

import (
	"errors"
	"time"
)

// TriggerEvent is the lifecycle moment a trigger binds to.
type TriggerEvent string

const (
	TriggerOnEnter   TriggerEvent = "on_enter"
	TriggerOnExit    TriggerEvent = "on_exit"
	TriggerOnTimeout TriggerEvent = "on_timeout"
)

// Valid reports whether the event is one of the closed set.
func (e TriggerEvent) Valid() bool {
	switch e {
	case TriggerOnEnter, TriggerOnExit, TriggerOnTimeout:
		return true
	}

	return false
}

// ActionItem names the side effect a trigger executes, with free-form
// parameters interpreted by the registered handler for the type.
type ActionItem struct {
	Type   string         `json:"type"   validate:"required"`
	Params map[string]any `json:"params"`
}

// WorkflowTrigger binds a status and lifecycle event to exactly one action,
// gated by an optional AND-list of conditions. Several triggers may share a
// (status_name, event) pair; they fire independently in unspecified order.
type WorkflowTrigger struct {
	ID         string        `json:"id"`
	TenantID   string        `json:"tenant_id"   validate:"required"`
	Name       string        `json:"name"        validate:"required,min=3"`
	StatusName string        `json:"status_name" validate:"required"`
	Event      TriggerEvent  `json:"event"       validate:"required"`
	// TimeoutAfter is how long a work order may sit in StatusName before the
	// trigger fires. Required for on_timeout, meaningless otherwise.
	TimeoutAfter time.Duration `json:"timeout_after,omitempty"`
	Conditions   []Condition   `json:"conditions,omitempty"`
	Action       ActionItem    `json:"action"`
	CreatedAt    time.Time     `json:"created_at"`
	CreatedBy    string        `json:"created_by"`
}

var (
	ErrTriggerEventInvalid   = errors.New("trigger event is not one of on_enter, on_exit, on_timeout")
	ErrTimeoutAfterRequired  = errors.New("timeout_after is required for on_timeout triggers")
	ErrTimeoutAfterForbidden = errors.New("timeout_after is only valid for on_timeout triggers")
)

// Validate checks the invariants that hold without a store lookup. The
// referenced status existing in the tenant is checked by the service layer.
func (t *WorkflowTrigger) Validate() error {
	if !t.Event.Valid() {
		return ErrTriggerEventInvalid
	}

	if t.Event == TriggerOnTimeout && t.TimeoutAfter <= 0 {
		return ErrTimeoutAfterRequired
	}

	if t.Event != TriggerOnTimeout && t.TimeoutAfter != 0 {
		return ErrTimeoutAfterForbidden
	}

	for _, c := range t.Conditions {
		if err := c.Validate(); err != nil {
			return err
		}
	}

	return nil
}
