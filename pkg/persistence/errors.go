// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrStatusNotFound indicates a workflow status was not found by name.
	ErrStatusNotFound = errors.New("workflow status not found")

	// ErrTriggerNotFound indicates a workflow trigger was not found by the given identifier.
	ErrTriggerNotFound = errors.New("workflow trigger not found")

	// ErrWorkOrderNotFound indicates a work order was not found by the given identifier.
	ErrWorkOrderNotFound = errors.New("work order not found")

	// ErrWatchNotFound indicates a status watch was not found by the given identifier.
	ErrWatchNotFound = errors.New("status watch not found")

	// ErrDuplicateIdempotencyKey indicates a record with the same idempotency
	// key already exists for the tenant.
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")
)

// RepositoryError wraps persistence errors with operation context.
type RepositoryError struct {
	Op       string // Operation being performed (e.g., "GetByName", "Save", "Delete")
	TenantID string // Tenant the operation ran for
	Key      string // Record identifier if applicable
	Err      error  // Underlying error
}

func (e *RepositoryError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s failed for tenant %s, record %s: %v", e.Op, e.TenantID, e.Key, e.Err)
	}

	return fmt.Sprintf("%s failed for tenant %s: %v", e.Op, e.TenantID, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for repository errors.
func (e *RepositoryError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewRepositoryError creates a new repository error with context.
func NewRepositoryError(op, tenantID, key string, err error) *RepositoryError {
	return &RepositoryError{
		Op:       op,
		TenantID: tenantID,
		Key:      key,
		Err:      err,
	}
}

// IsStatusNotFound checks if an error indicates a workflow status was not found.
func IsStatusNotFound(err error) bool {
	return errors.Is(err, ErrStatusNotFound)
}

// IsTriggerNotFound checks if an error indicates a workflow trigger was not found.
func IsTriggerNotFound(err error) bool {
	return errors.Is(err, ErrTriggerNotFound)
}

// IsWorkOrderNotFound checks if an error indicates a work order was not found.
func IsWorkOrderNotFound(err error) bool {
	return errors.Is(err, ErrWorkOrderNotFound)
}

// IsDuplicateIdempotencyKey checks if an error indicates an idempotency key collision.
func IsDuplicateIdempotencyKey(err error) bool {
	return errors.Is(err, ErrDuplicateIdempotencyKey)
}
