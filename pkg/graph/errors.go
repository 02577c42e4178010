// Package graph is the workflow graph mutation engine. Every operation takes
// a workflow value and returns a fresh one; failed operations return the
// error alone and never touch the input.
package graph

import (
	"errors"
	"fmt"
)

// Standard mutation error types. Callers match with errors.Is.
var (
	// ErrInvalidReference indicates a connection endpoint that does not
	// reference a node in the workflow's node set.
	ErrInvalidReference = errors.New("connection references a nonexistent node")

	// ErrInvalidHandle indicates a source handle that is not legal for the
	// source node's type.
	ErrInvalidHandle = errors.New("invalid handle for node type")

	// ErrNotFound indicates a patch or remove targeting a missing node or
	// connection.
	ErrNotFound = errors.New("not found in workflow")
)

// MutationError wraps a graph mutation failure with operation context.
type MutationError struct {
	Op         string // Operation being performed (e.g. "AddConnection")
	WorkflowID string
	TargetID   string // Node or connection ID the operation targeted
	Err        error
}

func (e *MutationError) Error() string {
	if e.TargetID != "" {
		return fmt.Sprintf("%s failed for %s in workflow %s: %v", e.Op, e.TargetID, e.WorkflowID, e.Err)
	}

	return fmt.Sprintf("%s failed in workflow %s: %v", e.Op, e.WorkflowID, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

func (e *MutationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func newMutationError(op, workflowID, targetID string, err error) *MutationError {
	return &MutationError{Op: op, WorkflowID: workflowID, TargetID: targetID, Err: err}
}
