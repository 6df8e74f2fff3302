// Package persistence provides the storage abstraction for workflow
// definitions. Drivers exist for the local file system, PostgreSQL, and
// Redis; all of them expose the same repository contract.
package persistence

import (
	"context"

	"github.com/hdts/flowkit/pkg/models"
)

// Persistence is a storage driver.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// ListOptions filters and pages a workflow listing.
type ListOptions struct {
	Limit     int
	Offset    int
	Status    *models.WorkflowStatus
	Owner     string
	SortBy    string // created_at, updated_at, name
	SortOrder string // asc, desc
}

// ListResult is one page of workflows plus paging metadata.
type ListResult struct {
	Workflows   []*models.Workflow `json:"workflows"`
	TotalCount  int64              `json:"total_count"`
	HasNextPage bool               `json:"has_next_page"`
}

// WorkflowRepository stores workflow definitions.
type WorkflowRepository interface {
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Summaries returns the identity slice of every non-deleted workflow,
	// regardless of status. It feeds the duplicate-identity checks, so it
	// must be cheap relative to List.
	Summaries(ctx context.Context) ([]models.WorkflowSummary, error)

	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}
