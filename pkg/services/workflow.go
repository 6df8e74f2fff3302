package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/hdts/flowkit/pkg/eventbus"
	"github.com/hdts/flowkit/pkg/events"
	"github.com/hdts/flowkit/pkg/graph"
	"github.com/hdts/flowkit/pkg/layout"
	"github.com/hdts/flowkit/pkg/models"
	"github.com/hdts/flowkit/pkg/persistence"
	"github.com/hdts/flowkit/pkg/projection"
	"github.com/hdts/flowkit/pkg/template"
	"github.com/hdts/flowkit/pkg/validation"
	"github.com/hdts/flowkit/pkg/wire"
)

// ErrWorkflowNotFound is returned when a workflow is not found.
var ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

// Workflow is the definition service: it owns every operation the editor
// performs against stored workflow definitions.
type Workflow struct {
	persistence persistence.Persistence
	bus         eventbus.EventPublisher
	roles       []models.Role
	layout      *layout.Engine
}

// NewWorkflow creates the service. A nil bus disables event publishing; an
// empty role list falls back to the built-in registry.
func NewWorkflow(p persistence.Persistence, bus eventbus.EventPublisher, roles []models.Role) *Workflow {
	if len(roles) == 0 {
		roles = models.DefaultRoles
	}

	return &Workflow{
		persistence: p,
		bus:         bus,
		roles:       roles,
		layout:      layout.NewEngine(),
	}
}

// Roles returns the configured role registry.
func (w *Workflow) Roles() []models.Role {
	return w.roles
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	if err := w.persistence.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListRequest contains options for listing workflows.
type ListRequest struct {
	Limit     int
	Offset    int
	Status    *models.WorkflowStatus
	Owner     string
	SortBy    string
	SortOrder string
}

// List retrieves workflows with filtering, sorting, and pagination.
func (w *Workflow) List(ctx context.Context, req ListRequest) (*persistence.ListResult, error) {
	if err := w.validateListRequest(&req); err != nil {
		return nil, err
	}

	result, err := w.repo().List(ctx, persistence.ListOptions{
		Limit:     req.Limit,
		Offset:    req.Offset,
		Status:    req.Status,
		Owner:     req.Owner,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		if persistence.IsInvalidSortField(err) {
			return nil, ErrInvalidSortField
		}

		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return result, nil
}

func (w *Workflow) validateListRequest(req *ListRequest) error {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	if req.Limit > 100 {
		req.Limit = 100
	}

	if req.Offset < 0 {
		req.Offset = 0
	}

	if req.SortBy == "" {
		req.SortBy = "created_at"
	}

	if req.SortOrder == "" {
		req.SortOrder = "desc"
	}

	if !slices.Contains([]string{"created_at", "updated_at", "name"}, req.SortBy) {
		return fmt.Errorf("%w: %s", ErrInvalidSortField, req.SortBy)
	}

	if req.SortOrder != "asc" && req.SortOrder != "desc" {
		return fmt.Errorf("%w: %s", ErrInvalidSortOrder, req.SortOrder)
	}

	if req.Status != nil {
		known := []models.WorkflowStatus{
			models.WorkflowStatusDraft,
			models.WorkflowStatusActive,
			models.WorkflowStatusArchived,
		}

		if !slices.Contains(known, *req.Status) {
			return fmt.Errorf("%w: %s", ErrInvalidStatus, *req.Status)
		}
	}

	return nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	return w.repo().GetByID(ctx, id)
}

// Create stores a new draft definition. Metadata must pass the field and
// duplicate-identity checks; the graph may still be incomplete, that is what
// drafts are for.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	if workflow.ID == "" {
		workflow.ID = uuid.New().String()
	}

	if err := w.checkMetadata(ctx, workflow, "Create"); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now
	workflow.Status = models.WorkflowStatusDraft

	if workflow.Steps == nil {
		workflow.Steps = []*models.Step{}
	}

	if workflow.Transitions == nil {
		workflow.Transitions = []*models.Transition{}
	}

	if err := w.repo().Save(ctx, workflow); err != nil {
		return nil, err
	}

	w.publish(ctx, workflow.ID, events.WorkflowCreated{
		BaseEvent: w.baseEvent(events.WorkflowCreatedEvent, workflow.ID),
		Name:      workflow.Name,
		Owner:     workflow.Owner,
	})

	return workflow, nil
}

// Update overwrites an existing definition's metadata and graph, keeping its
// identity, status, and creation timestamp.
func (w *Workflow) Update(ctx context.Context, id string, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	existing, err := w.repo().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	workflow.ID = id

	if err := w.checkMetadata(ctx, workflow, "Update"); err != nil {
		return nil, err
	}

	workflow.Status = existing.Status
	workflow.CreatedAt = existing.CreatedAt
	workflow.UpdatedAt = time.Now().UTC()

	if err := w.repo().Save(ctx, workflow); err != nil {
		return nil, err
	}

	w.publish(ctx, id, events.WorkflowUpdated{
		BaseEvent: w.baseEvent(events.WorkflowUpdatedEvent, id),
		Name:      workflow.Name,
	})

	return workflow, nil
}

// Delete removes a definition.
func (w *Workflow) Delete(ctx context.Context, id string) error {
	if err := w.repo().Delete(ctx, id); err != nil {
		return err
	}

	w.publish(ctx, id, events.WorkflowDeleted{
		BaseEvent: w.baseEvent(events.WorkflowDeletedEvent, id),
	})

	return nil
}

// Validate runs the full validator over a stored definition and returns the
// problem list. An empty list means the definition is submittable.
func (w *Workflow) Validate(ctx context.Context, id string) ([]string, error) {
	workflow, err := w.repo().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	summaries, err := w.repo().Summaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow summaries: %w", err)
	}

	return validation.Validate(workflow, summaries), nil
}

// Publish promotes a draft to active. Submission is refused while the
// validator reports any problem, and the exported payload must pass the
// backend's schema before the status flips.
func (w *Workflow) Publish(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := w.repo().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow.Status == models.WorkflowStatusActive {
		return nil, fmt.Errorf("Publish %s: %w", id, ErrAlreadyPublished)
	}

	summaries, err := w.repo().Summaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow summaries: %w", err)
	}

	if problems := validation.Validate(workflow, summaries); len(problems) > 0 {
		return nil, NewValidationFailedError("Publish", problems)
	}

	payload := wire.FromWorkflow(workflow)

	violations, err := wire.CheckPayload(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to check wire payload: %w", err)
	}

	if len(violations) > 0 {
		return nil, NewValidationFailedError("Publish", violations)
	}

	workflow.Status = models.WorkflowStatusActive
	workflow.UpdatedAt = time.Now().UTC()

	if err := w.repo().Save(ctx, workflow); err != nil {
		return nil, err
	}

	w.publish(ctx, id, events.WorkflowPublished{
		BaseEvent: w.baseEvent(events.WorkflowPublishedEvent, id),
		Name:      workflow.Name,
		Status:    workflow.Status,
		Payload:   payload,
	})

	return workflow, nil
}

// Export builds the wire payload for a stored definition without publishing.
func (w *Workflow) Export(ctx context.Context, id string) (*wire.Payload, error) {
	workflow, err := w.repo().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payload := wire.FromWorkflow(workflow)

	violations, err := wire.CheckPayload(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to check wire payload: %w", err)
	}

	if len(violations) > 0 {
		return nil, NewValidationFailedError("Export", violations)
	}

	return payload, nil
}

// ApplyTemplate replaces a definition's graph with a starter template and
// auto-arranges it.
func (w *Workflow) ApplyTemplate(ctx context.Context, id, templateName string) (*models.Workflow, error) {
	workflow, err := w.repo().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tpl, err := template.Find(templateName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err.Error())
	}

	sync := projection.NewSynchronizer(graph.Empty(), w.layout)
	sync.Replace(tpl.Apply(w.roles))

	return w.saveGraph(ctx, workflow, sync)
}

// Arrange re-runs auto-layout over a definition's whole graph.
func (w *Workflow) Arrange(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, sync, err := w.session(ctx, id)
	if err != nil {
		return nil, err
	}

	sync.Arrange()

	return w.saveGraph(ctx, workflow, sync)
}

// Projections derives both UI projections of a definition's graph.
func (w *Workflow) Projections(ctx context.Context, id string) ([]projection.ListRow, []projection.FlowNode, []projection.FlowEdge, error) {
	_, sync, err := w.session(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}

	return sync.List(), sync.Nodes(), sync.Edges(), nil
}

// AddStep adds a step to a definition's graph.
func (w *Workflow) AddStep(ctx context.Context, id string, step *models.Step) (*models.Step, error) {
	workflow, sync, err := w.session(ctx, id)
	if err != nil {
		return nil, err
	}

	stored := sync.AddStep(step)

	if _, err := w.saveGraph(ctx, workflow, sync); err != nil {
		return nil, err
	}

	return stored, nil
}

// UpdateStep applies a partial update to one step.
func (w *Workflow) UpdateStep(ctx context.Context, id, stepID string, patch graph.StepPatch) (*models.Workflow, error) {
	workflow, sync, err := w.session(ctx, id)
	if err != nil {
		return nil, err
	}

	sync.UpdateStep(stepID, patch)

	return w.saveGraph(ctx, workflow, sync)
}

// RemoveStep deletes a step, cascading to its transitions.
func (w *Workflow) RemoveStep(ctx context.Context, id, stepID string) (*models.Workflow, error) {
	workflow, sync, err := w.session(ctx, id)
	if err != nil {
		return nil, err
	}

	sync.RemoveStep(stepID)

	return w.saveGraph(ctx, workflow, sync)
}

// AddTransition adds a transition to a definition's graph.
func (w *Workflow) AddTransition(ctx context.Context, id string, t *models.Transition) (*models.Transition, error) {
	workflow, sync, err := w.session(ctx, id)
	if err != nil {
		return nil, err
	}

	stored := sync.AddTransition(t)

	if _, err := w.saveGraph(ctx, workflow, sync); err != nil {
		return nil, err
	}

	return stored, nil
}

// UpdateTransition applies a partial update to one transition.
func (w *Workflow) UpdateTransition(ctx context.Context, id, transitionID string, patch graph.TransitionPatch) (*models.Workflow, error) {
	workflow, sync, err := w.session(ctx, id)
	if err != nil {
		return nil, err
	}

	sync.UpdateTransition(transitionID, patch)

	return w.saveGraph(ctx, workflow, sync)
}

// RemoveTransition deletes a transition.
func (w *Workflow) RemoveTransition(ctx context.Context, id, transitionID string) (*models.Workflow, error) {
	workflow, sync, err := w.session(ctx, id)
	if err != nil {
		return nil, err
	}

	sync.RemoveTransition(transitionID)

	return w.saveGraph(ctx, workflow, sync)
}

// Connect folds a connection drawn in the diagram view into the graph.
func (w *Workflow) Connect(ctx context.Context, id, source, target, sourceHandle, targetHandle string) (*models.Transition, error) {
	workflow, sync, err := w.session(ctx, id)
	if err != nil {
		return nil, err
	}

	stored := sync.Connect(source, target, sourceHandle, targetHandle)

	if _, err := w.saveGraph(ctx, workflow, sync); err != nil {
		return nil, err
	}

	return stored, nil
}

// checkMetadata enforces the checks that must hold even for drafts: field
// presence/bounds and identity uniqueness. Graph problems are allowed to
// persist until publish.
func (w *Workflow) checkMetadata(ctx context.Context, workflow *models.Workflow, op string) error {
	summaries, err := w.repo().Summaries(ctx)
	if err != nil {
		return fmt.Errorf("failed to load workflow summaries: %w", err)
	}

	stripped := *workflow
	stripped.Steps = nil
	stripped.Transitions = nil

	if problems := validation.Validate(&stripped, summaries); len(problems) > 0 {
		return NewValidationFailedError(op, problems)
	}

	return nil
}

func (w *Workflow) session(ctx context.Context, id string) (*models.Workflow, *projection.Synchronizer, error) {
	workflow, err := w.repo().GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	sync := projection.NewSynchronizer(graph.New(workflow.Steps, workflow.Transitions), w.layout)

	return workflow, sync, nil
}

func (w *Workflow) saveGraph(ctx context.Context, workflow *models.Workflow, sync *projection.Synchronizer) (*models.Workflow, error) {
	workflow.Steps = sync.Graph().Steps()
	workflow.Transitions = sync.Graph().Transitions()
	workflow.UpdatedAt = time.Now().UTC()

	if err := w.repo().Save(ctx, workflow); err != nil {
		return nil, err
	}

	w.publish(ctx, workflow.ID, events.WorkflowUpdated{
		BaseEvent: w.baseEvent(events.WorkflowUpdatedEvent, workflow.ID),
		Name:      workflow.Name,
	})

	return workflow, nil
}

func (w *Workflow) repo() persistence.WorkflowRepository {
	return w.persistence.WorkflowRepository()
}

func (w *Workflow) baseEvent(eventType events.EventType, workflowID string) events.BaseEvent {
	return events.BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

// publish is fire-and-forget: a bus outage must never block an edit.
func (w *Workflow) publish(ctx context.Context, key string, event eventbus.Event) {
	if w.bus == nil {
		return
	}

	_ = w.bus.Publish(ctx, key, event)
}
