// Package services implements the application operations of the definition
// service: CRUD, graph editing, validation, and publishing.
package services

import (
	"errors"
	"fmt"
	"strings"
)

// Business logic errors. These indicate client mistakes (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidSortField = errors.New("invalid sort field")
	ErrInvalidSortOrder = errors.New("invalid sort order")
	ErrInvalidStatus    = errors.New("invalid workflow status")
	ErrWorkflowNil      = errors.New("workflow cannot be nil")
	ErrWorkflowInvalid  = errors.New("workflow definition is invalid")

	// Business logic conflicts (409 Conflict).
	ErrAlreadyPublished = errors.New("workflow is already published")
)

// ValidationFailedError carries the validator's full problem list so the
// editor can show every issue blocking submission at once.
type ValidationFailedError struct {
	Op       string
	Problems []string
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, ErrWorkflowInvalid, strings.Join(e.Problems, "; "))
}

func (e *ValidationFailedError) Unwrap() error {
	return ErrWorkflowInvalid
}

// NewValidationFailedError wraps a non-empty problem list.
func NewValidationFailedError(op string, problems []string) *ValidationFailedError {
	return &ValidationFailedError{Op: op, Problems: problems}
}

// ProblemsOf extracts the problem list when err is a validation failure.
func ProblemsOf(err error) []string {
	var vErr *ValidationFailedError
	if errors.As(err, &vErr) {
		return vErr.Problems
	}

	return nil
}

// IsValidationError checks whether err should map to HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidSortField) ||
		errors.Is(err, ErrInvalidSortOrder) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrWorkflowNil) ||
		errors.Is(err, ErrWorkflowInvalid)
}

// IsConflictError checks whether err should map to HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrAlreadyPublished)
}
