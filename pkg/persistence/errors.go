package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all backends return.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by ID.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrJobNotFound indicates a scheduled job was not found by ID.
	ErrJobNotFound = errors.New("scheduled job not found")

	// ErrInvalidSortField indicates a sort field outside the allowlist.
	ErrInvalidSortField = errors.New("invalid sort field")

	// ErrInvalidSortOrder indicates a sort order other than asc/desc.
	ErrInvalidSortOrder = errors.New("invalid sort order")
)

// RepositoryError wraps a storage failure with operation context.
type RepositoryError struct {
	Op       string // Operation being performed (e.g. "GetByID", "Save")
	Entity   string // "workflow" or "job"
	EntityID string
	Err      error
}

func (e *RepositoryError) Error() string {
	if e.EntityID != "" {
		return fmt.Sprintf("%s operation failed for %s %s: %v", e.Op, e.Entity, e.EntityID, e.Err)
	}

	return fmt.Sprintf("%s operation failed for %s: %v", e.Op, e.Entity, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

func (e *RepositoryError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkflowError creates a repository error for a workflow operation.
func NewWorkflowError(op, workflowID string, err error) *RepositoryError {
	return &RepositoryError{Op: op, Entity: "workflow", EntityID: workflowID, Err: err}
}

// NewJobError creates a repository error for a job operation.
func NewJobError(op, jobID string, err error) *RepositoryError {
	return &RepositoryError{Op: op, Entity: "job", EntityID: jobID, Err: err}
}

// IsWorkflowNotFound checks if an error indicates a missing workflow.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsJobNotFound checks if an error indicates a missing job.
func IsJobNotFound(err error) bool {
	return errors.Is(err, ErrJobNotFound)
}

// IsInvalidSortField checks if an error indicates a bad sort field.
func IsInvalidSortField(err error) bool {
	return errors.Is(err, ErrInvalidSortField)
}
