package services

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdts/flowkit/pkg/channels/gochannel"
	"github.com/hdts/flowkit/pkg/eventbus"
	"github.com/hdts/flowkit/pkg/events"
	"github.com/hdts/flowkit/pkg/models"
	"github.com/hdts/flowkit/pkg/persistence"
	"github.com/hdts/flowkit/pkg/persistence/file"
)

func newService(t *testing.T) *Workflow {
	t.Helper()

	return NewWorkflow(file.NewPersistence(t.TempDir()), nil, nil)
}

func draftWorkflow(name string) *models.Workflow {
	return &models.Workflow{
		Name:        name,
		Description: "Request new hardware for an employee.",
		Category:    "IT",
		SubCategory: name,
		Department:  "Operations",
		Owner:       "tester",
	}
}

func completeGraph(wf *models.Workflow) {
	wf.Steps = []*models.Step{
		{ID: "a", Name: "Submit", Role: "agent", Weight: 0.5, IsStart: true},
		{ID: "b", Name: "Complete", Role: "agent", Weight: 0.5, IsEnd: true},
	}
	wf.Transitions = []*models.Transition{
		{ID: "t1", From: "a", To: "b", Name: "Process"},
	}
}

func TestWorkflow_Create(t *testing.T) {
	service := newService(t)

	created, err := service.Create(t.Context(), draftWorkflow("Hardware Request"))
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.WorkflowStatusDraft, created.Status)
	assert.False(t, created.CreatedAt.IsZero())
	assert.NotNil(t, created.Steps)
	assert.NotNil(t, created.Transitions)
}

func TestWorkflow_Create_RejectsMissingMetadata(t *testing.T) {
	service := newService(t)

	_, err := service.Create(t.Context(), &models.Workflow{Name: "Only a name"})
	require.Error(t, err)

	assert.True(t, IsValidationError(err))
	assert.Contains(t, ProblemsOf(err), "category is required")
}

func TestWorkflow_Create_RejectsDuplicateName(t *testing.T) {
	service := newService(t)

	_, err := service.Create(t.Context(), draftWorkflow("Hardware Request"))
	require.NoError(t, err)

	dup := draftWorkflow("hardware request")
	dup.SubCategory = "Something Else"

	_, err = service.Create(t.Context(), dup)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestWorkflow_Create_AllowsIncompleteGraph(t *testing.T) {
	service := newService(t)

	wf := draftWorkflow("Hardware Request")
	wf.Steps = []*models.Step{
		{ID: "a", Name: "Submit", Role: ""}, // no role, no start
	}

	_, err := service.Create(t.Context(), wf)
	assert.NoError(t, err, "graph problems must not block saving a draft")
}

func TestWorkflow_Update_PreservesStatusAndCreatedAt(t *testing.T) {
	service := newService(t)

	created, err := service.Create(t.Context(), draftWorkflow("Hardware Request"))
	require.NoError(t, err)

	edited := draftWorkflow("Hardware Request")
	edited.Description = "Updated description."
	edited.Status = models.WorkflowStatusActive // must be ignored

	updated, err := service.Update(t.Context(), created.ID, edited)
	require.NoError(t, err)

	assert.Equal(t, models.WorkflowStatusDraft, updated.Status)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Updated description.", updated.Description)
}

func TestWorkflow_Delete(t *testing.T) {
	service := newService(t)

	created, err := service.Create(t.Context(), draftWorkflow("Hardware Request"))
	require.NoError(t, err)

	require.NoError(t, service.Delete(t.Context(), created.ID))

	_, err = service.FetchByID(t.Context(), created.ID)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflow_List_Defaults(t *testing.T) {
	service := newService(t)

	for _, name := range []string{"One", "Two", "Three"} {
		_, err := service.Create(t.Context(), draftWorkflow(name))
		require.NoError(t, err)
	}

	result, err := service.List(t.Context(), ListRequest{})
	require.NoError(t, err)

	assert.Equal(t, int64(3), result.TotalCount)
	assert.Len(t, result.Workflows, 3)
}

func TestWorkflow_List_RejectsUnknownSortField(t *testing.T) {
	service := newService(t)

	_, err := service.List(t.Context(), ListRequest{SortBy: "owner"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestWorkflow_Validate_ReportsGraphProblems(t *testing.T) {
	service := newService(t)

	wf := draftWorkflow("Hardware Request")
	wf.Steps = []*models.Step{
		{ID: "a", Name: "Submit", Role: "agent"},
	}
	wf.Transitions = []*models.Transition{
		{ID: "t1", From: "a", To: "gone", Name: "dangling"},
	}

	created, err := service.Create(t.Context(), wf)
	require.NoError(t, err)

	problems, err := service.Validate(t.Context(), created.ID)
	require.NoError(t, err)

	assert.Contains(t, problems, "workflow has no start step; mark exactly one step as start")
	assert.Contains(t, problems, "1 transition(s) reference steps that no longer exist")
}

func TestWorkflow_Publish_BlockedWhileInvalid(t *testing.T) {
	service := newService(t)

	wf := draftWorkflow("Hardware Request")
	wf.Steps = []*models.Step{
		{ID: "a", Name: "Submit", Role: ""},
	}

	created, err := service.Create(t.Context(), wf)
	require.NoError(t, err)

	_, err = service.Publish(t.Context(), created.ID)
	require.Error(t, err)

	assert.True(t, IsValidationError(err))
	assert.NotEmpty(t, ProblemsOf(err))

	stored, err := service.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusDraft, stored.Status, "failed publish must not flip status")
}

func TestWorkflow_Publish_FlipsStatus(t *testing.T) {
	service := newService(t)

	wf := draftWorkflow("Hardware Request")
	completeGraph(wf)

	created, err := service.Create(t.Context(), wf)
	require.NoError(t, err)

	published, err := service.Publish(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusActive, published.Status)

	_, err = service.Publish(t.Context(), created.ID)
	require.Error(t, err)
	assert.True(t, IsConflictError(err))
}

func TestWorkflow_Publish_EmitsEvent(t *testing.T) {
	pub, sub := gochannel.CreateTestChannel(watermill.NopLogger{})
	bus := eventbus.NewWatermillEventBus(pub, sub)

	t.Cleanup(func() { _ = bus.Close() })

	service := NewWorkflow(file.NewPersistence(t.TempDir()), bus, nil)

	received := make(chan *events.WorkflowPublished, 1)

	err := bus.Handle(events.WorkflowPublishedEvent, func(_ context.Context, event any) error {
		published, ok := event.(*events.WorkflowPublished)
		if ok {
			received <- published
		}

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(t.Context()))

	wf := draftWorkflow("Hardware Request")
	completeGraph(wf)

	created, err := service.Create(t.Context(), wf)
	require.NoError(t, err)

	_, err = service.Publish(t.Context(), created.ID)
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, created.ID, event.WorkflowID)
		assert.Equal(t, models.WorkflowStatusActive, event.Status)
		assert.NotNil(t, event.Payload)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the published event")
	}
}

func TestWorkflow_Export(t *testing.T) {
	service := newService(t)

	wf := draftWorkflow("Hardware Request")
	completeGraph(wf)

	created, err := service.Create(t.Context(), wf)
	require.NoError(t, err)

	payload, err := service.Export(t.Context(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, "Hardware Request", payload.Metadata.Name)
	assert.Len(t, payload.Graph.Nodes, 2)
	assert.Len(t, payload.Graph.Edges, 1)
}

func TestWorkflow_AddStepAndConnect(t *testing.T) {
	service := newService(t)

	created, err := service.Create(t.Context(), draftWorkflow("Hardware Request"))
	require.NoError(t, err)

	first, err := service.AddStep(t.Context(), created.ID, &models.Step{Name: "Submit", Role: "agent"})
	require.NoError(t, err)
	assert.True(t, first.IsStart)
	assert.NotNil(t, first.Position)

	second, err := service.AddStep(t.Context(), created.ID, &models.Step{Name: "Complete", Role: "agent", IsEnd: true})
	require.NoError(t, err)

	tr, err := service.Connect(t.Context(), created.ID, first.ID, second.ID, "out", "in")
	require.NoError(t, err)
	assert.NotEmpty(t, tr.ID)

	stored, err := service.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Steps, 2)
	assert.Len(t, stored.Transitions, 1)
}

func TestWorkflow_RemoveStepCascades(t *testing.T) {
	service := newService(t)

	wf := draftWorkflow("Hardware Request")
	completeGraph(wf)

	created, err := service.Create(t.Context(), wf)
	require.NoError(t, err)

	_, err = service.RemoveStep(t.Context(), created.ID, "b")
	require.NoError(t, err)

	stored, err := service.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Steps, 1)
	assert.Empty(t, stored.Transitions)
}

func TestWorkflow_ApplyTemplate(t *testing.T) {
	service := newService(t)

	created, err := service.Create(t.Context(), draftWorkflow("Hardware Request"))
	require.NoError(t, err)

	applied, err := service.ApplyTemplate(t.Context(), created.ID, "approval")
	require.NoError(t, err)

	assert.Len(t, applied.Steps, 3)
	assert.Len(t, applied.Transitions, 3)

	for _, step := range applied.Steps {
		assert.NotNil(t, step.Position, "template steps are auto-arranged")
	}

	problems, err := service.Validate(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestWorkflow_ApplyTemplate_Unknown(t *testing.T) {
	service := newService(t)

	created, err := service.Create(t.Context(), draftWorkflow("Hardware Request"))
	require.NoError(t, err)

	_, err = service.ApplyTemplate(t.Context(), created.ID, "nope")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestWorkflow_Arrange(t *testing.T) {
	service := newService(t)

	wf := draftWorkflow("Hardware Request")
	completeGraph(wf)
	wf.Steps[0].Position = &models.Position{X: 900, Y: 900}

	created, err := service.Create(t.Context(), wf)
	require.NoError(t, err)

	arranged, err := service.Arrange(t.Context(), created.ID)
	require.NoError(t, err)

	for _, step := range arranged.Steps {
		require.NotNil(t, step.Position)
	}

	assert.InDelta(t, 0.0, arranged.Steps[0].Position.X, 0.001, "arrange moves pinned steps")
}

func TestWorkflow_Projections(t *testing.T) {
	service := newService(t)

	wf := draftWorkflow("Hardware Request")
	completeGraph(wf)

	created, err := service.Create(t.Context(), wf)
	require.NoError(t, err)

	list, nodes, edges, err := service.Projections(t.Context(), created.ID)
	require.NoError(t, err)

	assert.Len(t, list, 2)
	assert.Len(t, nodes, 2)
	assert.Len(t, edges, 1)
}

func TestWorkflow_Roles_DefaultRegistry(t *testing.T) {
	service := newService(t)

	roles := service.Roles()
	require.NotEmpty(t, roles)
	assert.Equal(t, models.DefaultRoles, roles)
}
