package models

// Transition is a directed edge between two steps, labeled with the action
// that moves a ticket along it. From/To are step IDs; they are allowed to
// dangle transiently while editing and are only checked by the validator.
type Transition struct {
	ID   string `json:"id"   validate:"required"`
	From string `json:"from" validate:"required"`
	To   string `json:"to"   validate:"required"`
	Name string `json:"name" validate:"required,max=64"`

	// Diagram-only attributes. Dropped from the wire payload.
	SourceHandle string `json:"source_handle,omitempty"`
	TargetHandle string `json:"target_handle,omitempty"`
	IsReturn     bool   `json:"is_return,omitempty"`
}

// Clone returns a copy so graph snapshots never share transition memory.
func (t *Transition) Clone() *Transition {
	out := *t

	return &out
}
