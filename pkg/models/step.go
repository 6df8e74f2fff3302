package models

// DefaultStepWeight is used for progress-percentage computation when a step
// does not specify its own weight.
const DefaultStepWeight = 0.5

// Position is a 2-D diagram coordinate. It is advisory display state owned by
// the layout engine, never a correctness concern.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Step is one stage of ticket handling inside a workflow graph.
type Step struct {
	ID          string    `json:"id"          validate:"required"`
	Name        string    `json:"name"        validate:"required,max=64"`
	Role        string    `json:"role"`
	EscalateTo  string    `json:"escalate_to,omitempty"`
	Description string    `json:"description,omitempty" validate:"max=256"`
	Instruction string    `json:"instruction,omitempty"`
	Weight      float64   `json:"weight"      validate:"min=0,max=1"`
	IsStart     bool      `json:"is_start"`
	IsEnd       bool      `json:"is_end"`
	Position    *Position `json:"position,omitempty"`
}

// Clone returns a deep copy so graph snapshots never share step memory.
func (s *Step) Clone() *Step {
	out := *s

	if s.Position != nil {
		pos := *s.Position
		out.Position = &pos
	}

	return &out
}
