package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdts/flowkit/pkg/graph"
	"github.com/hdts/flowkit/pkg/layout"
	"github.com/hdts/flowkit/pkg/models"
)

func newSession(t *testing.T) *Synchronizer {
	t.Helper()

	return NewSynchronizer(graph.Empty(), layout.NewEngine())
}

func TestSynchronizer_AddStepAssignsPosition(t *testing.T) {
	s := newSession(t)

	stored := s.AddStep(&models.Step{Name: "Submit", Role: "agent"})
	require.NotNil(t, stored)

	assert.NotEmpty(t, stored.ID)
	assert.NotNil(t, stored.Position, "new steps are auto-placed")
}

func TestSynchronizer_AddStepKeepsExistingPositions(t *testing.T) {
	s := newSession(t)

	first := s.AddStep(&models.Step{
		Name:     "Submit",
		Position: &models.Position{X: 42, Y: 17},
	})

	s.AddStep(&models.Step{Name: "Review"})

	kept := s.Graph().StepByID(first.ID)
	require.NotNil(t, kept.Position)
	assert.InDelta(t, 42.0, kept.Position.X, 0.001)
	assert.InDelta(t, 17.0, kept.Position.Y, 0.001)
}

func TestSynchronizer_ListCountsDegrees(t *testing.T) {
	s := newSession(t)

	a := s.AddStep(&models.Step{Name: "A", Role: "agent"})
	b := s.AddStep(&models.Step{Name: "B", Role: "agent"})
	c := s.AddStep(&models.Step{Name: "C", Role: "agent"})

	s.AddTransition(&models.Transition{From: a.ID, To: b.ID, Name: "ab"})
	s.AddTransition(&models.Transition{From: a.ID, To: c.ID, Name: "ac"})
	s.AddTransition(&models.Transition{From: b.ID, To: c.ID, Name: "bc"})

	rows := s.List()
	require.Len(t, rows, 3)

	byID := make(map[string]ListRow)
	for _, r := range rows {
		byID[r.ID] = r
	}

	assert.Equal(t, 2, byID[a.ID].Outgoing)
	assert.Equal(t, 0, byID[a.ID].Incoming)
	assert.Equal(t, 2, byID[c.ID].Incoming)
	assert.True(t, byID[a.ID].IsStart)
}

func TestSynchronizer_NodesCarryStepData(t *testing.T) {
	s := newSession(t)

	step := s.AddStep(&models.Step{Name: "Review", Role: "supervisor", IsEnd: true})

	nodes := s.Nodes()
	require.Len(t, nodes, 1)

	assert.Equal(t, step.ID, nodes[0].ID)
	assert.Equal(t, "Review", nodes[0].Data.Label)
	assert.Equal(t, "supervisor", nodes[0].Data.Role)
	assert.True(t, nodes[0].Data.IsEnd)
}

func TestSynchronizer_EdgesFilterDanglingReferences(t *testing.T) {
	s := newSession(t)

	a := s.AddStep(&models.Step{Name: "A", Role: "agent"})
	b := s.AddStep(&models.Step{Name: "B", Role: "agent"})

	s.AddTransition(&models.Transition{From: a.ID, To: b.ID, Name: "ok"})
	s.AddTransition(&models.Transition{From: a.ID, To: "gone", Name: "dangling"})

	assert.Equal(t, 2, s.Graph().TransitionCount(), "dangling edge stays in the graph")

	edges := s.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, "ok", edges[0].Label)
}

func TestSynchronizer_EdgeKinds(t *testing.T) {
	s := newSession(t)

	a := s.AddStep(&models.Step{Name: "A", Role: "agent"})
	b := s.AddStep(&models.Step{Name: "B", Role: "agent"})

	s.AddTransition(&models.Transition{From: a.ID, To: b.ID, Name: "forward"})
	s.AddTransition(&models.Transition{From: b.ID, To: a.ID, Name: "back", IsReturn: true})

	kinds := make(map[string]string)
	for _, e := range s.Edges() {
		kinds[e.Label] = e.Kind
	}

	assert.Equal(t, EdgeKindDefault, kinds["forward"])
	assert.Equal(t, EdgeKindReturn, kinds["back"])
}

func TestSynchronizer_ConnectFoldsDrawnEdge(t *testing.T) {
	s := newSession(t)

	a := s.AddStep(&models.Step{Name: "A", Role: "agent"})
	b := s.AddStep(&models.Step{Name: "B", Role: "agent"})

	tr := s.Connect(a.ID, b.ID, "out", "in")
	require.NotNil(t, tr)

	assert.NotEmpty(t, tr.ID)
	assert.Empty(t, tr.Name, "connection starts unnamed")

	edges := s.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, "out", edges[0].SourceHandle)
	assert.Equal(t, "in", edges[0].TargetHandle)
}

func TestSynchronizer_RemoveStepDropsProjections(t *testing.T) {
	s := newSession(t)

	a := s.AddStep(&models.Step{Name: "A", Role: "agent"})
	b := s.AddStep(&models.Step{Name: "B", Role: "agent"})
	s.AddTransition(&models.Transition{From: a.ID, To: b.ID, Name: "ab"})

	s.RemoveStep(b.ID)

	assert.Len(t, s.List(), 1)
	assert.Empty(t, s.Edges())
	assert.Equal(t, 0, s.Graph().TransitionCount(), "cascade removed the transition")
}

func TestSynchronizer_ArrangeAdoptsAllCoordinates(t *testing.T) {
	s := newSession(t)

	a := s.AddStep(&models.Step{
		Name:     "A",
		Role:     "agent",
		Position: &models.Position{X: 500, Y: 500},
	})
	b := s.AddStep(&models.Step{Name: "B", Role: "agent"})
	s.AddTransition(&models.Transition{From: a.ID, To: b.ID, Name: "ab"})

	s.Arrange()

	repositioned := s.Graph().StepByID(a.ID)
	require.NotNil(t, repositioned.Position)
	assert.InDelta(t, 0.0, repositioned.Position.X, 0.001, "explicit arrange moves pinned nodes too")
}

func TestSynchronizer_ReplaceFillsMissingPositions(t *testing.T) {
	s := newSession(t)

	s.Replace(graph.New(
		[]*models.Step{
			{ID: "a", Name: "A", IsStart: true},
			{ID: "b", Name: "B"},
		},
		[]*models.Transition{
			{ID: "t", From: "a", To: "b", Name: "ab"},
		},
	))

	for _, step := range s.Graph().Steps() {
		assert.NotNil(t, step.Position, "step %s", step.ID)
	}
}
