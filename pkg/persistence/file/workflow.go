package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hdts/flowkit/pkg/models"
	"github.com/hdts/flowkit/pkg/persistence"
)

// WorkflowRepository stores one JSON file per workflow definition.
type WorkflowRepository struct {
	root string
}

// NewWorkflowRepository creates a repository rooted at the given directory.
func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{root: root}
}

func (r *WorkflowRepository) dir() string {
	return filepath.Join(r.root, "workflows")
}

func (r *WorkflowRepository) path(id string) string {
	return filepath.Join(r.dir(), id+".json")
}

// List returns a page of workflows, filtered and sorted in memory.
func (r *WorkflowRepository) List(ctx context.Context, opts persistence.ListOptions) (*persistence.ListResult, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	if opts.SortBy == "" {
		opts.SortBy = "created_at"
	}

	if opts.SortOrder == "" {
		opts.SortOrder = "desc"
	}

	allowedSorts := map[string]bool{"created_at": true, "updated_at": true, "name": true}
	if !allowedSorts[opts.SortBy] {
		return nil, fmt.Errorf("%w: %s", persistence.ErrInvalidSortField, opts.SortBy)
	}

	all, err := r.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.Workflow, 0, len(all))

	for _, wf := range all {
		if opts.Status != nil && wf.Status != *opts.Status {
			continue
		}

		if opts.Owner != "" && wf.Owner != opts.Owner {
			continue
		}

		filtered = append(filtered, wf)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		var less bool

		switch opts.SortBy {
		case "name":
			less = strings.ToLower(filtered[i].Name) < strings.ToLower(filtered[j].Name)
		case "updated_at":
			less = filtered[i].UpdatedAt.Before(filtered[j].UpdatedAt)
		default:
			less = filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
		}

		if opts.SortOrder == "desc" {
			return !less
		}

		return less
	})

	total := int64(len(filtered))

	start := opts.Offset
	if start > len(filtered) {
		start = len(filtered)
	}

	end := start + opts.Limit
	if end > len(filtered) {
		end = len(filtered)
	}

	return &persistence.ListResult{
		Workflows:   filtered[start:end],
		TotalCount:  total,
		HasNextPage: int64(end) < total,
	}, nil
}

// Summaries returns the identity slice of every stored workflow.
func (r *WorkflowRepository) Summaries(ctx context.Context) ([]models.WorkflowSummary, error) {
	all, err := r.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.WorkflowSummary, 0, len(all))
	for _, wf := range all {
		summaries = append(summaries, wf.Summary())
	}

	return summaries, nil
}

// GetByID loads one workflow definition.
func (r *WorkflowRepository) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	data, err := os.ReadFile(r.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	var wf models.Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	return &wf, nil
}

// Save writes the workflow document, creating the directory on first use.
func (r *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	if err := os.MkdirAll(r.dir(), 0o755); err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	if err := os.WriteFile(r.path(workflow.ID), data, 0o600); err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

// Delete removes the workflow document.
func (r *WorkflowRepository) Delete(_ context.Context, id string) error {
	err := os.Remove(r.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
		}

		return persistence.NewWorkflowError("Delete", id, err)
	}

	return nil
}

func (r *WorkflowRepository) loadAll(ctx context.Context) ([]*models.Workflow, error) {
	entries, err := os.ReadDir(r.dir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*models.Workflow{}, nil
		}

		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")

		wf, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %s: %w", id, err)
		}

		workflows = append(workflows, wf)
	}

	return workflows, nil
}
