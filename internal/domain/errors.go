package domain

import (
	"errors"
	"fmt"
)

// ErrOrderCodeConflict is returned by the order repository when an insert
// hits the order-code unique constraint. The workflow regenerates the code
// and retries; it never reaches the client directly.
var ErrOrderCodeConflict = errors.New("order code already exists")

// ErrProductIDConflict is the product-id counterpart. Collisions are
// practically impossible with UUIDs but the same retry discipline applies.
var ErrProductIDConflict = errors.New("product id already exists")

// ErrOrderCodeExhausted signals that code regeneration ran out of attempts.
// Distinct from validation failure: the request itself was fine.
var ErrOrderCodeExhausted = errors.New("order code generation retries exhausted")

// ValidationError covers malformed or out-of-range input, including
// references to ineligible products. Maps to 400.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, fields map[string]string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// NotFoundError covers unknown order or product identifiers. Maps to 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// GatewayError means the shipment provider call failed, timed out or
// errored. The order was not created or updated; the caller may retry the
// whole request. Maps to 502.
type GatewayError struct {
	Op     string
	Reason string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("shipment gateway %s failed: %s", e.Op, e.Reason)
}

// PersistenceError is a storage failure. When it happens after a successful
// gateway call the external side may now be ahead of local state; that
// window is logged as a reconciliation risk, not compensated.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
