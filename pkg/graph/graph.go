// Package graph holds the canonical in-memory representation of a workflow's
// step/transition graph and its copy-on-write mutation operations.
//
// Mutations never fail: structurally invalid states (dangling transitions,
// missing roles) are representable while editing and are surfaced by the
// validator, not rejected here. The one invariant enforced eagerly is the
// single start step.
package graph

import (
	"github.com/google/uuid"

	"github.com/hdts/flowkit/pkg/models"
)

// Graph is an immutable snapshot of a workflow's steps and transitions.
// Every mutation returns a new snapshot; the receiver is never modified.
type Graph struct {
	steps       []*models.Step
	transitions []*models.Transition
}

// New builds a snapshot from existing steps and transitions, deep-copying
// both so later edits to the inputs cannot leak in.
func New(steps []*models.Step, transitions []*models.Transition) *Graph {
	g := &Graph{
		steps:       make([]*models.Step, 0, len(steps)),
		transitions: make([]*models.Transition, 0, len(transitions)),
	}

	for _, s := range steps {
		g.steps = append(g.steps, s.Clone())
	}

	for _, t := range transitions {
		g.transitions = append(g.transitions, t.Clone())
	}

	return g
}

// Empty returns a snapshot with no steps and no transitions.
func Empty() *Graph {
	return &Graph{}
}

// Steps returns a defensive copy of the step set in insertion order.
func (g *Graph) Steps() []*models.Step {
	out := make([]*models.Step, 0, len(g.steps))
	for _, s := range g.steps {
		out = append(out, s.Clone())
	}

	return out
}

// Transitions returns a defensive copy of the transition set.
func (g *Graph) Transitions() []*models.Transition {
	out := make([]*models.Transition, 0, len(g.transitions))
	for _, t := range g.transitions {
		out = append(out, t.Clone())
	}

	return out
}

// StepByID returns the step with the given ID, or nil.
func (g *Graph) StepByID(id string) *models.Step {
	for _, s := range g.steps {
		if s.ID == id {
			return s.Clone()
		}
	}

	return nil
}

// TransitionByID returns the transition with the given ID, or nil.
func (g *Graph) TransitionByID(id string) *models.Transition {
	for _, t := range g.transitions {
		if t.ID == id {
			return t.Clone()
		}
	}

	return nil
}

// HasStep reports whether a step with the given ID exists.
func (g *Graph) HasStep(id string) bool {
	for _, s := range g.steps {
		if s.ID == id {
			return true
		}
	}

	return false
}

// StepCount returns the number of steps.
func (g *Graph) StepCount() int { return len(g.steps) }

// TransitionCount returns the number of transitions.
func (g *Graph) TransitionCount() int { return len(g.transitions) }

// NewID mints an identifier at the model boundary. Every step and transition
// created through this package carries a server-assigned ID from birth, so
// callers never need to distinguish temporary from persisted IDs.
func NewID() string {
	return uuid.New().String()
}

// AddStep appends a step and returns the new snapshot plus the stored step.
// A missing ID is assigned here; the first step of a graph becomes the start
// step, and setting IsStart on the new step demotes any previous start. The
// weight is stored as given, zero included; weight defaulting belongs to the
// request boundary where unset is still distinguishable.
func (g *Graph) AddStep(step *models.Step) (*Graph, *models.Step) {
	stored := step.Clone()
	if stored.ID == "" {
		stored.ID = NewID()
	}

	if len(g.steps) == 0 {
		stored.IsStart = true
	}

	next := g.clone()
	if stored.IsStart {
		clearStart(next.steps)
	}

	next.steps = append(next.steps, stored)

	return next, stored.Clone()
}

// UpdateStep applies a partial update to the step with the given ID. An
// unknown ID leaves the snapshot unchanged. Setting IsStart to true clears
// IsStart on every other step in the same operation.
func (g *Graph) UpdateStep(id string, patch StepPatch) *Graph {
	if !g.HasStep(id) {
		return g
	}

	next := g.clone()

	for _, s := range next.steps {
		if s.ID != id {
			continue
		}

		patch.apply(s)

		if s.IsStart {
			for _, other := range next.steps {
				if other.ID != id {
					other.IsStart = false
				}
			}
		}
	}

	return next
}

// RemoveStep deletes a step and cascades to every transition that references
// it from either side. Removing an unknown ID is a no-op.
func (g *Graph) RemoveStep(id string) *Graph {
	if !g.HasStep(id) {
		return g
	}

	next := &Graph{
		steps:       make([]*models.Step, 0, len(g.steps)-1),
		transitions: make([]*models.Transition, 0, len(g.transitions)),
	}

	for _, s := range g.steps {
		if s.ID != id {
			next.steps = append(next.steps, s.Clone())
		}
	}

	for _, t := range g.transitions {
		if t.From != id && t.To != id {
			next.transitions = append(next.transitions, t.Clone())
		}
	}

	return next
}

// AddTransition appends a transition and returns the new snapshot plus the
// stored transition. A missing ID is assigned here. From/To are not checked
// against the step set; the validator reports dangling references.
func (g *Graph) AddTransition(transition *models.Transition) (*Graph, *models.Transition) {
	stored := transition.Clone()
	if stored.ID == "" {
		stored.ID = NewID()
	}

	next := g.clone()
	next.transitions = append(next.transitions, stored)

	return next, stored.Clone()
}

// UpdateTransition applies a partial update to the transition with the given
// ID. An unknown ID leaves the snapshot unchanged.
func (g *Graph) UpdateTransition(id string, patch TransitionPatch) *Graph {
	found := false

	for _, t := range g.transitions {
		if t.ID == id {
			found = true

			break
		}
	}

	if !found {
		return g
	}

	next := g.clone()

	for _, t := range next.transitions {
		if t.ID == id {
			patch.apply(t)
		}
	}

	return next
}

// RemoveTransition deletes a transition. Removing an unknown ID is a no-op.
func (g *Graph) RemoveTransition(id string) *Graph {
	next := &Graph{
		steps:       make([]*models.Step, 0, len(g.steps)),
		transitions: make([]*models.Transition, 0, len(g.transitions)),
	}

	for _, s := range g.steps {
		next.steps = append(next.steps, s.Clone())
	}

	removed := false

	for _, t := range g.transitions {
		if t.ID == id {
			removed = true

			continue
		}

		next.transitions = append(next.transitions, t.Clone())
	}

	if !removed {
		return g
	}

	return next
}

// StartStep returns the step currently marked as start, or nil.
func (g *Graph) StartStep() *models.Step {
	for _, s := range g.steps {
		if s.IsStart {
			return s.Clone()
		}
	}

	return nil
}

func (g *Graph) clone() *Graph {
	return New(g.steps, g.transitions)
}

func clearStart(steps []*models.Step) {
	for _, s := range steps {
		s.IsStart = false
	}
}
