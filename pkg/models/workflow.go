// Package models defines the core domain models for helpdesk workflow definitions.
package models

import "time"

// WorkflowStatus represents the lifecycle state of a workflow definition.
type WorkflowStatus string

const (
	WorkflowStatusDraft    WorkflowStatus = "draft"    // Editable, not applied to tickets
	WorkflowStatusActive   WorkflowStatus = "active"   // Published, applied to new tickets
	WorkflowStatusArchived WorkflowStatus = "archived" // Retired, kept for history
)

// Field bounds shared by the validator and the request DTOs.
const (
	MaxNameLength        = 64
	MaxDescriptionLength = 256
)

// Workflow is a complete workflow definition: the identifying metadata, the
// four SLA tiers, and the step/transition graph tickets move through.
type Workflow struct {
	ID          string `json:"id"`
	Name        string `json:"name"         validate:"required,max=64"`
	Description string `json:"description"  validate:"required,max=256"`
	Category    string `json:"category"     validate:"required,max=64"`
	SubCategory string `json:"sub_category" validate:"required,max=64"`
	Department  string `json:"department"   validate:"required,max=64"`

	UrgentSLA *SLA `json:"urgent_sla,omitempty"`
	HighSLA   *SLA `json:"high_sla,omitempty"`
	MediumSLA *SLA `json:"medium_sla,omitempty"`
	LowSLA    *SLA `json:"low_sla,omitempty"`

	Steps       []*Step       `json:"steps"`
	Transitions []*Transition `json:"transitions"`

	Status    WorkflowStatus `json:"status"`
	Owner     string         `json:"owner"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt *time.Time     `json:"deleted_at,omitempty"`
}

// WorkflowSummary is the slice of a workflow the duplicate checks need.
type WorkflowSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
}

// Summary projects a workflow down to its identity fields.
func (w *Workflow) Summary() WorkflowSummary {
	return WorkflowSummary{
		ID:          w.ID,
		Name:        w.Name,
		Category:    w.Category,
		SubCategory: w.SubCategory,
	}
}
