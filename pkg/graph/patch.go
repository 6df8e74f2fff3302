package graph

import "github.com/hdts/flowkit/pkg/models"

// StepPatch is a partial update of a step. Nil fields are left untouched.
type StepPatch struct {
	Name        *string
	Role        *string
	EscalateTo  *string
	Description *string
	Instruction *string
	Weight      *float64
	IsStart     *bool
	IsEnd       *bool
	Position    *models.Position
}

func (p StepPatch) apply(s *models.Step) {
	if p.Name != nil {
		s.Name = *p.Name
	}

	if p.Role != nil {
		s.Role = *p.Role
	}

	if p.EscalateTo != nil {
		s.EscalateTo = *p.EscalateTo
	}

	if p.Description != nil {
		s.Description = *p.Description
	}

	if p.Instruction != nil {
		s.Instruction = *p.Instruction
	}

	if p.Weight != nil {
		s.Weight = *p.Weight
	}

	if p.IsStart != nil {
		s.IsStart = *p.IsStart
	}

	if p.IsEnd != nil {
		s.IsEnd = *p.IsEnd
	}

	if p.Position != nil {
		pos := *p.Position
		s.Position = &pos
	}
}

// TransitionPatch is a partial update of a transition.
type TransitionPatch struct {
	From         *string
	To           *string
	Name         *string
	SourceHandle *string
	TargetHandle *string
	IsReturn     *bool
}

func (p TransitionPatch) apply(t *models.Transition) {
	if p.From != nil {
		t.From = *p.From
	}

	if p.To != nil {
		t.To = *p.To
	}

	if p.Name != nil {
		t.Name = *p.Name
	}

	if p.SourceHandle != nil {
		t.SourceHandle = *p.SourceHandle
	}

	if p.TargetHandle != nil {
		t.TargetHandle = *p.TargetHandle
	}

	if p.IsReturn != nil {
		t.IsReturn = *p.IsReturn
	}
}
