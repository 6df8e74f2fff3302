package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hdts/flowkit/pkg/models"
	"github.com/hdts/flowkit/pkg/persistence"
)

// WorkflowRepository persists workflow definitions in the workflows table.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a repository over an open database handle.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

const workflowColumns = `id, name, description, category, sub_category, department,
	urgent_sla, high_sla, medium_sla, low_sla, steps, transitions,
	status, owner, created_at, updated_at, deleted_at`

// List returns a page of non-deleted workflows.
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

	// Sort inputs are interpolated into SQL; allowlist them strictly.
	allowedSorts := map[string]bool{"created_at": true, "updated_at": true, "name": true}
	if !allowedSorts[opts.SortBy] {
		return nil, fmt.Errorf("%w: %s", persistence.ErrInvalidSortField, opts.SortBy)
	}

	order := "DESC"
	if opts.SortOrder == "asc" {
		order = "ASC"
	}

	where := "deleted_at IS NULL"
	args := []any{}

	if opts.Status != nil {
		args = append(args, string(*opts.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	if opts.Owner != "" {
		args = append(args, opts.Owner)
		where += fmt.Sprintf(" AND owner = $%d", len(args))
	}

	var total int64

	countQuery := "SELECT COUNT(*) FROM workflows WHERE " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count workflows: %w", err)
	}

	args = append(args, opts.Limit, opts.Offset)
	query := fmt.Sprintf(
		"SELECT %s FROM workflows WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		workflowColumns, where, opts.SortBy, order, len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	workflows := make([]*models.Workflow, 0, opts.Limit)

	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, wf)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workflows: %w", err)
	}

	return &persistence.ListResult{
		Workflows:   workflows,
		TotalCount:  total,
		HasNextPage: int64(opts.Offset+len(workflows)) < total,
	}, nil
}

// Summaries returns the identity slice of every non-deleted workflow.
func (r *WorkflowRepository) Summaries(ctx context.Context) ([]models.WorkflowSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, category, sub_category FROM workflows WHERE deleted_at IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow summaries: %w", err)
	}
	defer rows.Close()

	var summaries []models.WorkflowSummary

	for rows.Next() {
		var s models.WorkflowSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.SubCategory); err != nil {
			return nil, fmt.Errorf("failed to scan workflow summary: %w", err)
		}

		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// GetByID loads one non-deleted workflow.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM workflows WHERE id = $1 AND deleted_at IS NULL", workflowColumns), id)

	wf, err := scanWorkflow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	return wf, nil
}

// Save upserts the workflow definition.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	urgentSLA, err := marshalSLA(workflow.UrgentSLA)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	highSLA, err := marshalSLA(workflow.HighSLA)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	mediumSLA, err := marshalSLA(workflow.MediumSLA)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	lowSLA, err := marshalSLA(workflow.LowSLA)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	steps, err := json.Marshal(workflow.Steps)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	transitions, err := json.Marshal(workflow.Transitions)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO workflows (id, name, description, category, sub_category, department,
			urgent_sla, high_sla, medium_sla, low_sla, steps, transitions,
			status, owner, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			sub_category = EXCLUDED.sub_category,
			department = EXCLUDED.department,
			urgent_sla = EXCLUDED.urgent_sla,
			high_sla = EXCLUDED.high_sla,
			medium_sla = EXCLUDED.medium_sla,
			low_sla = EXCLUDED.low_sla,
			steps = EXCLUDED.steps,
			transitions = EXCLUDED.transitions,
			status = EXCLUDED.status,
			owner = EXCLUDED.owner,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at`,
		workflow.ID, workflow.Name, workflow.Description, workflow.Category,
		workflow.SubCategory, workflow.Department,
		urgentSLA, highSLA, mediumSLA, lowSLA, steps, transitions,
		string(workflow.Status), workflow.Owner,
		workflow.CreatedAt, workflow.UpdatedAt, workflow.DeletedAt,
	)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

// Delete soft-deletes by stamping deleted_at.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE workflows SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	if affected == 0 {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		wf          models.Workflow
		urgentSLA   []byte
		highSLA     []byte
		mediumSLA   []byte
		lowSLA      []byte
		steps       []byte
		transitions []byte
		owner       sql.NullString
		deletedAt   sql.NullTime
	)

	err := row.Scan(
		&wf.ID, &wf.Name, &wf.Description, &wf.Category, &wf.SubCategory, &wf.Department,
		&urgentSLA, &highSLA, &mediumSLA, &lowSLA, &steps, &transitions,
		&wf.Status, &owner, &wf.CreatedAt, &wf.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if wf.UrgentSLA, err = unmarshalSLA(urgentSLA); err != nil {
		return nil, err
	}

	if wf.HighSLA, err = unmarshalSLA(highSLA); err != nil {
		return nil, err
	}

	if wf.MediumSLA, err = unmarshalSLA(mediumSLA); err != nil {
		return nil, err
	}

	if wf.LowSLA, err = unmarshalSLA(lowSLA); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(steps, &wf.Steps); err != nil {
		return nil, fmt.Errorf("failed to decode steps: %w", err)
	}

	if err := json.Unmarshal(transitions, &wf.Transitions); err != nil {
		return nil, fmt.Errorf("failed to decode transitions: %w", err)
	}

	if owner.Valid {
		wf.Owner = owner.String
	}

	if deletedAt.Valid {
		t := deletedAt.Time
		wf.DeletedAt = &t
	}

	return &wf, nil
}

func marshalSLA(sla *models.SLA) (any, error) {
	if sla == nil {
		return nil, nil
	}

	return json.Marshal(sla)
}

func unmarshalSLA(data []byte) (*models.SLA, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var sla models.SLA
	if err := json.Unmarshal(data, &sla); err != nil {
		return nil, fmt.Errorf("failed to decode SLA: %w", err)
	}

	return &sla, nil
}
