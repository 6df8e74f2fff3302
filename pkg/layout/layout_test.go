package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdts/flowkit/pkg/models"
)

func chain(names ...string) ([]*models.Step, []*models.Transition) {
	steps := make([]*models.Step, 0, len(names))
	for _, n := range names {
		steps = append(steps, &models.Step{ID: n, Name: n})
	}

	transitions := make([]*models.Transition, 0, len(names)-1)
	for i := 0; i < len(names)-1; i++ {
		transitions = append(transitions, &models.Transition{
			ID:   names[i] + "-" + names[i+1],
			From: names[i],
			To:   names[i+1],
		})
	}

	return steps, transitions
}

func TestArrange_Empty(t *testing.T) {
	e := NewEngine()

	positions := e.Arrange(nil, nil)

	assert.Empty(t, positions)
}

func TestArrange_ChainFormsColumns(t *testing.T) {
	e := NewEngine()
	steps, transitions := chain("a", "b", "c")

	positions := e.Arrange(steps, transitions)
	require.Len(t, positions, 3)

	colWidth := e.NodeWidth + e.ColumnGap

	assert.InDelta(t, 0.0, positions["a"].X, 0.001)
	assert.InDelta(t, colWidth, positions["b"].X, 0.001)
	assert.InDelta(t, 2*colWidth, positions["c"].X, 0.001)
}

func TestArrange_BranchesShareColumn(t *testing.T) {
	e := NewEngine()
	steps := []*models.Step{
		{ID: "start"}, {ID: "left"}, {ID: "right"}, {ID: "end"},
	}
	transitions := []*models.Transition{
		{ID: "1", From: "start", To: "left"},
		{ID: "2", From: "start", To: "right"},
		{ID: "3", From: "left", To: "end"},
		{ID: "4", From: "right", To: "end"},
	}

	positions := e.Arrange(steps, transitions)

	assert.InDelta(t, positions["left"].X, positions["right"].X, 0.001)
	assert.NotEqual(t, positions["left"].Y, positions["right"].Y)
	assert.Greater(t, positions["end"].X, positions["left"].X)
}

func TestArrange_CycleDoesNotBreakLayout(t *testing.T) {
	e := NewEngine()
	steps := []*models.Step{
		{ID: "submit"}, {ID: "review"}, {ID: "done"},
	}
	transitions := []*models.Transition{
		{ID: "1", From: "submit", To: "review"},
		{ID: "2", From: "review", To: "submit"}, // rework loop
		{ID: "3", From: "review", To: "done"},
	}

	positions := e.Arrange(steps, transitions)
	require.Len(t, positions, 3)

	// The loop members share a column; the exit lands after it.
	assert.InDelta(t, positions["submit"].X, positions["review"].X, 0.001)
	assert.Greater(t, positions["done"].X, positions["review"].X)
}

func TestArrange_IgnoresDanglingAndSelfEdges(t *testing.T) {
	e := NewEngine()
	steps, transitions := chain("a", "b")
	transitions = append(transitions,
		&models.Transition{ID: "x", From: "a", To: "missing"},
		&models.Transition{ID: "y", From: "b", To: "b"},
	)

	positions := e.Arrange(steps, transitions)
	require.Len(t, positions, 2)
	assert.Greater(t, positions["b"].X, positions["a"].X)
}

func TestArrange_Deterministic(t *testing.T) {
	e := NewEngine()
	steps, transitions := chain("a", "b", "c", "d")

	first := e.Arrange(steps, transitions)
	second := e.Arrange(steps, transitions)

	assert.Equal(t, first, second)
}

func TestArrange_DoesNotMutateInputs(t *testing.T) {
	e := NewEngine()
	steps, transitions := chain("a", "b")
	steps[0].Position = &models.Position{X: 999, Y: 999}

	e.Arrange(steps, transitions)

	assert.InDelta(t, 999.0, steps[0].Position.X, 0.001)
}
