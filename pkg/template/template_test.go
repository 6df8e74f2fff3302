package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdts/flowkit/pkg/models"
	"github.com/hdts/flowkit/pkg/validation"
)

func TestAll_SortedByName(t *testing.T) {
	all := All()
	require.Len(t, all, 3)

	assert.Equal(t, "approval", all[0].Name)
	assert.Equal(t, "escalation", all[1].Name)
	assert.Equal(t, "simple-request", all[2].Name)
}

func TestFind_Unknown(t *testing.T) {
	_, err := Find("nope")
	require.Error(t, err)
}

func TestApply_MintsFreshIDs(t *testing.T) {
	tpl, err := Find("simple-request")
	require.NoError(t, err)

	first := tpl.Apply(nil)
	second := tpl.Apply(nil)

	assert.NotEqual(t, first.Steps()[0].ID, second.Steps()[0].ID)
}

func TestApply_WiresTransitionsToGeneratedIDs(t *testing.T) {
	tpl, err := Find("approval")
	require.NoError(t, err)

	g := tpl.Apply(nil)
	require.Equal(t, 3, g.StepCount())
	require.Equal(t, 3, g.TransitionCount())

	for _, tr := range g.Transitions() {
		assert.True(t, g.HasStep(tr.From), "transition %q from", tr.Name)
		assert.True(t, g.HasStep(tr.To), "transition %q to", tr.Name)
	}
}

func TestApply_RejectReturnsToSubmitter(t *testing.T) {
	tpl, err := Find("approval")
	require.NoError(t, err)

	g := tpl.Apply(nil)

	var returns int

	for _, tr := range g.Transitions() {
		if tr.IsReturn {
			returns++

			assert.Equal(t, "Reject", tr.Name)
		}
	}

	assert.Equal(t, 1, returns)
}

func TestApply_FallbackRoleWhenBlueprintRoleUnknown(t *testing.T) {
	tpl, err := Find("approval")
	require.NoError(t, err)

	custom := []models.Role{{ID: "clerk", Name: "Clerk"}}
	g := tpl.Apply(custom)

	for _, s := range g.Steps() {
		assert.Equal(t, "clerk", s.Role, "step %q", s.Name)
	}
}

func TestApply_ProducesValidatableGraph(t *testing.T) {
	for _, name := range []string{"simple-request", "approval", "escalation"} {
		t.Run(name, func(t *testing.T) {
			tpl, err := Find(name)
			require.NoError(t, err)

			g := tpl.Apply(nil)

			wf := &models.Workflow{
				ID:          "wf-1",
				Name:        "Template Check",
				Description: "Filled metadata so only graph checks apply.",
				Category:    "IT",
				SubCategory: "General",
				Department:  "Operations",
				Steps:       g.Steps(),
				Transitions: g.Transitions(),
			}

			assert.Empty(t, validation.Validate(wf, nil))
		})
	}
}
