// Package web provides the HTTP handlers and request/response types of the
// workflow definition API.
package web

import (
	"github.com/hdts/flowkit/pkg/graph"
	"github.com/hdts/flowkit/pkg/models"
	"github.com/hdts/flowkit/pkg/projection"
	"github.com/hdts/flowkit/pkg/wire"
)

// SLAFields carries the four tiers as wire duration strings (PT4H30M).
// Empty means the tier is not configured.
type SLAFields struct {
	UrgentSLA string `json:"urgent_sla,omitempty"`
	HighSLA   string `json:"high_sla,omitempty"`
	MediumSLA string `json:"medium_sla,omitempty"`
	LowSLA    string `json:"low_sla,omitempty"`
}

// CreateWorkflowRequest is the request body for creating a workflow.
type CreateWorkflowRequest struct {
	Name        string `json:"name"         validate:"required,max=64"`
	Description string `json:"description"  validate:"required,max=256"`
	Category    string `json:"category"     validate:"required,max=64"`
	SubCategory string `json:"sub_category" validate:"required,max=64"`
	Department  string `json:"department"   validate:"required,max=64"`
	Owner       string `json:"owner"`

	SLAFields
}

// UpdateWorkflowRequest is the request body for updating workflow metadata.
// Nil fields are left unchanged; SLA strings replace the stored tiers.
type UpdateWorkflowRequest struct {
	Name        *string `json:"name,omitempty"         validate:"omitempty,max=64"`
	Description *string `json:"description,omitempty"  validate:"omitempty,max=256"`
	Category    *string `json:"category,omitempty"     validate:"omitempty,max=64"`
	SubCategory *string `json:"sub_category,omitempty" validate:"omitempty,max=64"`
	Department  *string `json:"department,omitempty"   validate:"omitempty,max=64"`

	UrgentSLA *string `json:"urgent_sla,omitempty"`
	HighSLA   *string `json:"high_sla,omitempty"`
	MediumSLA *string `json:"medium_sla,omitempty"`
	LowSLA    *string `json:"low_sla,omitempty"`
}

// CreateStepRequest is the request body for adding a step.
type CreateStepRequest struct {
	Name        string           `json:"name"        validate:"required,max=64"`
	Role        string           `json:"role"`
	EscalateTo  string           `json:"escalate_to,omitempty"`
	Description string           `json:"description,omitempty" validate:"max=256"`
	Instruction string           `json:"instruction,omitempty"`
	Weight      *float64         `json:"weight,omitempty" validate:"omitempty,min=0,max=1"`
	IsStart     bool             `json:"is_start"`
	IsEnd       bool             `json:"is_end"`
	Position    *models.Position `json:"position,omitempty"`
}

// UpdateStepRequest is the request body for a partial step update.
type UpdateStepRequest struct {
	Name        *string          `json:"name,omitempty"        validate:"omitempty,max=64"`
	Role        *string          `json:"role,omitempty"`
	EscalateTo  *string          `json:"escalate_to,omitempty"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=256"`
	Instruction *string          `json:"instruction,omitempty"`
	Weight      *float64         `json:"weight,omitempty"      validate:"omitempty,min=0,max=1"`
	IsStart     *bool            `json:"is_start,omitempty"`
	IsEnd       *bool            `json:"is_end,omitempty"`
	Position    *models.Position `json:"position,omitempty"`
}

// CreateTransitionRequest is the request body for adding a transition.
type CreateTransitionRequest struct {
	From         string `json:"from" validate:"required"`
	To           string `json:"to"   validate:"required"`
	Name         string `json:"name" validate:"required,max=64"`
	SourceHandle string `json:"source_handle,omitempty"`
	TargetHandle string `json:"target_handle,omitempty"`
	IsReturn     bool   `json:"is_return,omitempty"`
}

// UpdateTransitionRequest is the request body for a partial transition
// update.
type UpdateTransitionRequest struct {
	From         *string `json:"from,omitempty"`
	To           *string `json:"to,omitempty"`
	Name         *string `json:"name,omitempty" validate:"omitempty,max=64"`
	SourceHandle *string `json:"source_handle,omitempty"`
	TargetHandle *string `json:"target_handle,omitempty"`
	IsReturn     *bool   `json:"is_return,omitempty"`
}

// ConnectRequest folds a connection drawn in the diagram view into the
// graph. Handles are connection-point identifiers from the diagram library.
type ConnectRequest struct {
	Source       string `json:"source" validate:"required"`
	Target       string `json:"target" validate:"required"`
	SourceHandle string `json:"source_handle,omitempty"`
	TargetHandle string `json:"target_handle,omitempty"`
}

// ValidateResponse reports the validator's findings for one definition.
type ValidateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ProjectionsResponse carries both derived views of a definition's graph.
type ProjectionsResponse struct {
	List  []projection.ListRow  `json:"list"`
	Nodes []projection.FlowNode `json:"nodes"`
	Edges []projection.FlowEdge `json:"edges"`
}

// toSLA parses one wire duration field, collecting a problem on failure.
func toSLA(value string, problems *[]string) *models.SLA {
	sla, err := wire.ParseDuration(value)
	if err != nil {
		*problems = append(*problems, err.Error())

		return nil
	}

	return sla
}

// Workflow maps a create request onto a domain workflow, accumulating SLA
// parse problems into the returned slice.
func (r CreateWorkflowRequest) Workflow() (*models.Workflow, []string) {
	var problems []string

	wf := &models.Workflow{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		SubCategory: r.SubCategory,
		Department:  r.Department,
		Owner:       r.Owner,
		UrgentSLA:   toSLA(r.UrgentSLA, &problems),
		HighSLA:     toSLA(r.HighSLA, &problems),
		MediumSLA:   toSLA(r.MediumSLA, &problems),
		LowSLA:      toSLA(r.LowSLA, &problems),
	}

	return wf, problems
}

// Apply folds an update request into an existing workflow, accumulating SLA
// parse problems into the returned slice.
func (r UpdateWorkflowRequest) Apply(wf *models.Workflow) []string {
	var problems []string

	if r.Name != nil {
		wf.Name = *r.Name
	}

	if r.Description != nil {
		wf.Description = *r.Description
	}

	if r.Category != nil {
		wf.Category = *r.Category
	}

	if r.SubCategory != nil {
		wf.SubCategory = *r.SubCategory
	}

	if r.Department != nil {
		wf.Department = *r.Department
	}

	if r.UrgentSLA != nil {
		wf.UrgentSLA = toSLA(*r.UrgentSLA, &problems)
	}

	if r.HighSLA != nil {
		wf.HighSLA = toSLA(*r.HighSLA, &problems)
	}

	if r.MediumSLA != nil {
		wf.MediumSLA = toSLA(*r.MediumSLA, &problems)
	}

	if r.LowSLA != nil {
		wf.LowSLA = toSLA(*r.LowSLA, &problems)
	}

	return problems
}

// Step maps a create request onto a domain step.
func (r CreateStepRequest) Step() *models.Step {
	weight := models.DefaultStepWeight
	if r.Weight != nil {
		weight = *r.Weight
	}

	return &models.Step{
		Name:        r.Name,
		Role:        r.Role,
		EscalateTo:  r.EscalateTo,
		Description: r.Description,
		Instruction: r.Instruction,
		Weight:      weight,
		IsStart:     r.IsStart,
		IsEnd:       r.IsEnd,
		Position:    r.Position,
	}
}

// Patch maps an update request onto a graph step patch.
func (r UpdateStepRequest) Patch() graph.StepPatch {
	return graph.StepPatch{
		Name:        r.Name,
		Role:        r.Role,
		EscalateTo:  r.EscalateTo,
		Description: r.Description,
		Instruction: r.Instruction,
		Weight:      r.Weight,
		IsStart:     r.IsStart,
		IsEnd:       r.IsEnd,
		Position:    r.Position,
	}
}

// Patch maps an update request onto a graph transition patch.
func (r UpdateTransitionRequest) Patch() graph.TransitionPatch {
	return graph.TransitionPatch{
		From:         r.From,
		To:           r.To,
		Name:         r.Name,
		SourceHandle: r.SourceHandle,
		TargetHandle: r.TargetHandle,
		IsReturn:     r.IsReturn,
	}
}

// Transition maps a create request onto a domain transition.
func (r CreateTransitionRequest) Transition() *models.Transition {
	return &models.Transition{
		From:         r.From,
		To:           r.To,
		Name:         r.Name,
		SourceHandle: r.SourceHandle,
		TargetHandle: r.TargetHandle,
		IsReturn:     r.IsReturn,
	}
}
