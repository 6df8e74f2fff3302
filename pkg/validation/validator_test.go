package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdts/flowkit/pkg/models"
)

func validWorkflow() *models.Workflow {
	return &models.Workflow{
		ID:          "wf-1",
		Name:        "Hardware Request",
		Description: "Request new hardware for an employee.",
		Category:    "IT",
		SubCategory: "Hardware",
		Department:  "Operations",
		Steps: []*models.Step{
			{ID: "a", Name: "Submit", Role: "agent", IsStart: true},
			{ID: "b", Name: "Complete", Role: "agent", IsEnd: true},
		},
		Transitions: []*models.Transition{
			{ID: "t1", From: "a", To: "b", Name: "Process"},
		},
	}
}

func TestValidate_CleanWorkflow(t *testing.T) {
	errs := Validate(validWorkflow(), nil)

	assert.Empty(t, errs)
}

func TestValidate_RequiredFields(t *testing.T) {
	wf := &models.Workflow{}

	errs := Validate(wf, nil)

	assert.Contains(t, errs, "name is required")
	assert.Contains(t, errs, "category is required")
	assert.Contains(t, errs, "sub-category is required")
	assert.Contains(t, errs, "department is required")
	assert.Contains(t, errs, "description is required")
}

func TestValidate_FieldBounds(t *testing.T) {
	wf := validWorkflow()
	wf.Name = strings.Repeat("x", 65)
	wf.Description = strings.Repeat("x", 257)

	errs := Validate(wf, nil)

	assert.Contains(t, errs, "name must be at most 64 characters")
	assert.Contains(t, errs, "description must be at most 256 characters")
}

func TestValidate_FieldBoundsCountRunes(t *testing.T) {
	wf := validWorkflow()
	wf.Name = strings.Repeat("é", 40)

	assert.Empty(t, Validate(wf, nil))

	wf.Name = strings.Repeat("é", 65)

	assert.Contains(t, Validate(wf, nil), "name must be at most 64 characters")
}

func TestValidate_DuplicateName(t *testing.T) {
	wf := validWorkflow()

	existing := []models.WorkflowSummary{
		{ID: "wf-2", Name: "hardware request", Category: "HR", SubCategory: "Other"},
	}

	errs := Validate(wf, existing)

	require.Len(t, errs, 1)
	assert.Equal(t, `a workflow named "hardware request" already exists`, errs[0])
}

func TestValidate_DuplicateNameSkipsSelf(t *testing.T) {
	wf := validWorkflow()

	existing := []models.WorkflowSummary{
		{ID: wf.ID, Name: wf.Name, Category: wf.Category, SubCategory: wf.SubCategory},
	}

	assert.Empty(t, Validate(wf, existing))
}

func TestValidate_DuplicateCategoryPair(t *testing.T) {
	wf := validWorkflow()

	existing := []models.WorkflowSummary{
		{ID: "wf-2", Name: "Other Name", Category: "it", SubCategory: "hardware"},
	}

	errs := Validate(wf, existing)

	require.Len(t, errs, 1)
	assert.Equal(t, `a workflow already covers category "it" / "hardware"`, errs[0])
}

func TestValidate_SLAOrdering(t *testing.T) {
	wf := validWorkflow()
	wf.UrgentSLA = &models.SLA{Hours: 5}
	wf.HighSLA = &models.SLA{Hours: 4}
	wf.MediumSLA = &models.SLA{Hours: 8}
	wf.LowSLA = &models.SLA{Hours: 24}

	errs := Validate(wf, nil)

	require.Len(t, errs, 1)
	assert.Equal(t, "urgent SLA must be shorter than the high SLA", errs[0])
}

func TestValidate_SLAOrderingClean(t *testing.T) {
	wf := validWorkflow()
	wf.UrgentSLA = &models.SLA{Hours: 3}
	wf.HighSLA = &models.SLA{Hours: 5}
	wf.MediumSLA = &models.SLA{Hours: 8}
	wf.LowSLA = &models.SLA{Hours: 24}

	assert.Empty(t, Validate(wf, nil))
}

func TestValidate_SLAGapFromTop(t *testing.T) {
	wf := validWorkflow()
	wf.UrgentSLA = &models.SLA{Hours: 2}
	// high missing, medium set
	wf.MediumSLA = &models.SLA{Hours: 8}
	wf.LowSLA = &models.SLA{Hours: 24}

	errs := Validate(wf, nil)

	assert.Contains(t, errs, "urgent SLA requires the high SLA to be set as well")
}

func TestValidate_SLALowOnlyIsAllowed(t *testing.T) {
	wf := validWorkflow()
	wf.LowSLA = &models.SLA{Hours: 24}

	assert.Empty(t, Validate(wf, nil))
}

func TestValidate_SLAEqualLimitsRejected(t *testing.T) {
	wf := validWorkflow()
	wf.MediumSLA = &models.SLA{Hours: 8}
	wf.LowSLA = &models.SLA{Hours: 8}

	errs := Validate(wf, nil)

	require.Len(t, errs, 1)
	assert.Equal(t, "medium SLA must be shorter than the low SLA", errs[0])
}

func TestValidate_NoStartStep(t *testing.T) {
	wf := validWorkflow()
	wf.Steps[0].IsStart = false

	errs := Validate(wf, nil)

	assert.Contains(t, errs, "workflow has no start step; mark exactly one step as start")
}

func TestValidate_MultipleStartSteps(t *testing.T) {
	wf := validWorkflow()
	wf.Steps[1].IsStart = true

	errs := Validate(wf, nil)

	assert.Contains(t, errs, "workflow has 2 start steps; exactly one is allowed")
}

func TestValidate_MissingRolesCounted(t *testing.T) {
	wf := validWorkflow()
	wf.Steps[0].Role = ""
	wf.Steps[1].Role = "  "

	errs := Validate(wf, nil)

	assert.Contains(t, errs, "2 step(s) have no role assigned")
}

func TestValidate_OrphanedTransitionsCounted(t *testing.T) {
	wf := validWorkflow()
	wf.Transitions = []*models.Transition{
		{ID: "t1", From: "a", To: "c", Name: "dangling"},
	}

	errs := Validate(wf, nil)

	require.Len(t, errs, 1)
	assert.Equal(t, "1 transition(s) reference steps that no longer exist", errs[0])
}

func TestValidate_EmptyGraphSkipsGraphChecks(t *testing.T) {
	wf := validWorkflow()
	wf.Steps = nil
	wf.Transitions = nil

	assert.Empty(t, Validate(wf, nil))
}
