// Package services provides the business operations behind the API surface:
// tenant provisioning, status and trigger administration, and the work-order
// write path that feeds the automation engine.
package services

import (
	"errors"
	"fmt"

	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/persistence"
)

// Validation errors map to HTTP 400.
var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrTenantRequired       = errors.New("tenant id is required")
	ErrStatusNameRequired   = errors.New("status name is required")
	ErrStatusGroupInvalid   = errors.New("status group must be start, active, final or cancelled")
	ErrTriggerNameRequired  = errors.New("trigger name is required")
	ErrStatusUnknown        = errors.New("status is not defined for this tenant")
	ErrActionTypeUnknown    = errors.New("action type is not registered")
	ErrActionParamsInvalid  = errors.New("action params do not match the action schema")
	ErrTitleRequired        = errors.New("work order title is required")
	ErrMinutesInvalid       = errors.New("minutes must be greater than zero")
	ErrTriggerEventInvalid  = models.ErrTriggerEventInvalid
	ErrTimeoutAfterRequired = models.ErrTimeoutAfterRequired
)

// Not-found errors map to HTTP 404.
var (
	ErrStatusNotFound    = persistence.ErrStatusNotFound
	ErrTriggerNotFound   = persistence.ErrTriggerNotFound
	ErrWorkOrderNotFound = persistence.ErrWorkOrderNotFound
)

// Conflict errors map to HTTP 409.
var (
	ErrStatusExists = errors.New("a status with this name already exists")
	ErrStatusInUse  = errors.New("status is referenced by work orders or triggers")
)

// ServiceError carries the operation and a stable code alongside the cause so
// transports can map failures without string matching.
type ServiceError struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewValidationError builds a ServiceError for an invalid request.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsValidationError reports whether err should surface as a bad request.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrTenantRequired) ||
		errors.Is(err, ErrStatusNameRequired) ||
		errors.Is(err, ErrStatusGroupInvalid) ||
		errors.Is(err, ErrTriggerNameRequired) ||
		errors.Is(err, ErrStatusUnknown) ||
		errors.Is(err, ErrActionTypeUnknown) ||
		errors.Is(err, ErrActionParamsInvalid) ||
		errors.Is(err, ErrTitleRequired) ||
		errors.Is(err, ErrMinutesInvalid) ||
		errors.Is(err, ErrTriggerEventInvalid) ||
		errors.Is(err, ErrTimeoutAfterRequired) ||
		errors.Is(err, models.ErrTimeoutAfterForbidden) ||
		errors.Is(err, models.ErrConditionFieldRequired) ||
		errors.Is(err, models.ErrConditionOpInvalid)
}

// IsNotFoundError reports whether err should surface as a 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrStatusNotFound) ||
		errors.Is(err, ErrTriggerNotFound) ||
		errors.Is(err, ErrWorkOrderNotFound)
}

// IsConflictError reports whether err should surface as a 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrStatusExists) ||
		errors.Is(err, ErrStatusInUse)
}
