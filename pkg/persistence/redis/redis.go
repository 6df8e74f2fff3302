// Package redis provides Redis-backed persistence for workflow definitions.
// Each workflow is one JSON value under flowkit:workflows:<id>. Suited to
// short-lived draft stores and demo environments; listing scans the keyspace
// and filters in memory, like the file driver.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hdts/flowkit/pkg/models"
	"github.com/hdts/flowkit/pkg/persistence"
)

const keyPrefix = "flowkit:workflows:"

// Persistence implements the persistence.Persistence interface on Redis.
type Persistence struct {
	client *goredis.Client
	repo   *WorkflowRepository
}

// NewPersistence connects to the Redis URL (redis://host:port/db).
func NewPersistence(ctx context.Context, redisURL string) (*Persistence, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := goredis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Persistence{
		client: client,
		repo:   &WorkflowRepository{client: client},
	}, nil
}

// WorkflowRepository returns the workflow repository for this driver.
func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.repo
}

// HealthCheck pings the server.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close closes the client connection pool.
func (p *Persistence) Close(_ context.Context) error {
	return p.client.Close()
}

// WorkflowRepository stores workflow definitions as JSON values.
type WorkflowRepository struct {
	client *goredis.Client
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
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	data, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
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

// Save writes the workflow value.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	data, err := json.Marshal(workflow)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	if err := r.client.Set(ctx, keyPrefix+workflow.ID, data, 0).Err(); err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

// Delete removes the workflow value.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	deleted, err := r.client.Del(ctx, keyPrefix+id).Result()
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	if deleted == 0 {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

func (r *WorkflowRepository) loadAll(ctx context.Context) ([]*models.Workflow, error) {
	var workflows []*models.Workflow

	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		id := strings.TrimPrefix(iter.Val(), keyPrefix)

		wf, err := r.GetByID(ctx, id)
		if err != nil {
			// A key deleted between SCAN and GET is not an error.
			if persistence.IsWorkflowNotFound(err) {
				continue
			}

			return nil, err
		}

		workflows = append(workflows, wf)
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan workflow keys: %w", err)
	}

	return workflows, nil
}
