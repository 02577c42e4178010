// Package services implements the business operations over workflows and
// scheduled jobs: persistence-backed mutation, schedule validation, and the
// conflict derivation pipeline.
package services

import (
	"errors"
	"fmt"

	"github.com/scrapeflow/scrapeflow/pkg/graph"
	"github.com/scrapeflow/scrapeflow/pkg/registry"
	"github.com/scrapeflow/scrapeflow/pkg/scheduling"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidSortField = errors.New("invalid sort field")
	ErrInvalidSortOrder = errors.New("invalid sort order")
	ErrWorkflowNil      = errors.New("workflow cannot be nil")
	ErrJobNil           = errors.New("job cannot be nil")
	ErrNameRequired     = errors.New("name is required")
	ErrUnknownNodeType  = registry.ErrUnknownNodeType
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
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

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{Op: op, Code: code, Message: message, Err: err}
}

// IsValidationError checks if an error should map to HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidSortField) ||
		errors.Is(err, ErrInvalidSortOrder) ||
		errors.Is(err, ErrWorkflowNil) ||
		errors.Is(err, ErrJobNil) ||
		errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrUnknownNodeType) ||
		errors.Is(err, registry.ErrInvalidConfig) ||
		errors.Is(err, scheduling.ErrInvalidSchedule) ||
		errors.Is(err, graph.ErrInvalidReference) ||
		errors.Is(err, graph.ErrInvalidHandle)
}
