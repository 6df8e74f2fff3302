package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types every driver should use.
var (
	// ErrWorkflowNotFound indicates no workflow exists for the identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrInvalidSortField indicates an unsupported sort column was requested.
	ErrInvalidSortField = errors.New("invalid sort field")

	// ErrInvalidWorkflowStatus indicates a status outside the known set.
	ErrInvalidWorkflowStatus = errors.New("invalid workflow status")
)

// WorkflowError wraps driver errors with operation context.
type WorkflowError struct {
	Op         string // Operation being performed (e.g. "GetByID", "Save")
	WorkflowID string
	Err        error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s failed for workflow %s: %v", e.Op, e.WorkflowID, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkflowError creates a workflow error with context.
func NewWorkflowError(op, workflowID string, err error) *WorkflowError {
	return &WorkflowError{Op: op, WorkflowID: workflowID, Err: err}
}

// IsWorkflowNotFound reports whether err means the workflow does not exist.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsInvalidSortField reports whether err is a sort-field validation error.
func IsInvalidSortField(err error) bool {
	return errors.Is(err, ErrInvalidSortField)
}
