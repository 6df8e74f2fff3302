// Package projection keeps the two UI-facing views of a workflow graph — the
// compact list view and the visual flow-diagram view — consistent with the
// canonical graph snapshot they are both derived from.
//
// Both views are read-only derivations of one graph.Graph; edits arriving
// from either side go through the synchronizer's mutation methods, which fold
// the change into the canonical snapshot first and re-derive afterwards.
package projection

import (
	"github.com/hdts/flowkit/pkg/graph"
	"github.com/hdts/flowkit/pkg/models"
)

// Edge kinds distinguish the visual styling of a transition.
const (
	EdgeKindDefault = "default"
	EdgeKindReturn  = "return"
)

// ListRow is one entry of the simple list projection.
type ListRow struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	EscalateTo string `json:"escalate_to,omitempty"`
	IsStart    bool   `json:"is_start"`
	IsEnd      bool   `json:"is_end"`
	Outgoing   int    `json:"outgoing"`
	Incoming   int    `json:"incoming"`
}

// NodeData is the payload attached to a flow-diagram node.
type NodeData struct {
	Label   string `json:"label"`
	Role    string `json:"role"`
	IsStart bool   `json:"is_start"`
	IsEnd   bool   `json:"is_end"`
}

// FlowNode is one node of the flow-diagram projection.
type FlowNode struct {
	ID       string          `json:"id"`
	Data     NodeData        `json:"data"`
	Position models.Position `json:"position"`
}

// FlowEdge is one edge of the flow-diagram projection.
type FlowEdge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	Label        string `json:"label"`
	Kind         string `json:"kind"`
	SourceHandle string `json:"source_handle,omitempty"`
	TargetHandle string `json:"target_handle,omitempty"`
}

// Arranger supplies coordinates for steps that do not have one yet.
type Arranger interface {
	Arrange(steps []*models.Step, transitions []*models.Transition) map[string]models.Position
}

// Synchronizer owns an editing session's graph snapshot and derives both
// projections from it. It is not safe for concurrent use; an editing session
// has a single writer.
type Synchronizer struct {
	graph    *graph.Graph
	arranger Arranger
}

// NewSynchronizer starts a session over the given snapshot.
func NewSynchronizer(g *graph.Graph, arranger Arranger) *Synchronizer {
	return &Synchronizer{graph: g, arranger: arranger}
}

// Graph returns the current canonical snapshot.
func (s *Synchronizer) Graph() *graph.Graph {
	return s.graph
}

// Replace swaps in a whole new graph, as when a template is applied, and
// auto-arranges every step that arrives without a position.
func (s *Synchronizer) Replace(g *graph.Graph) {
	s.graph = g
	s.fillMissingPositions()
}

// AddStep folds a new step into the graph and assigns it a position without
// moving any existing node.
func (s *Synchronizer) AddStep(step *models.Step) *models.Step {
	next, stored := s.graph.AddStep(step)
	s.graph = next
	s.fillMissingPositions()

	return s.graph.StepByID(stored.ID)
}

// UpdateStep applies a partial step update.
func (s *Synchronizer) UpdateStep(id string, patch graph.StepPatch) {
	s.graph = s.graph.UpdateStep(id, patch)
}

// RemoveStep deletes a step and its incident transitions.
func (s *Synchronizer) RemoveStep(id string) {
	s.graph = s.graph.RemoveStep(id)
}

// AddTransition folds a new transition into the graph.
func (s *Synchronizer) AddTransition(t *models.Transition) *models.Transition {
	next, stored := s.graph.AddTransition(t)
	s.graph = next

	return stored
}

// UpdateTransition applies a partial transition update.
func (s *Synchronizer) UpdateTransition(id string, patch graph.TransitionPatch) {
	s.graph = s.graph.UpdateTransition(id, patch)
}

// RemoveTransition deletes a transition.
func (s *Synchronizer) RemoveTransition(id string) {
	s.graph = s.graph.RemoveTransition(id)
}

// Connect folds a connection drawn directly in the flow view into the
// canonical graph before the projections are re-derived, so the diagram
// library's transient edge is never dropped on the next render. The new
// transition starts unnamed; the editor prompts for the action label.
func (s *Synchronizer) Connect(source, target, sourceHandle, targetHandle string) *models.Transition {
	t := &models.Transition{
		From:         source,
		To:           target,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
	}

	return s.AddTransition(t)
}

// Arrange re-runs the layout engine over the full graph and adopts every
// coordinate. Used for the explicit auto-arrange action only.
func (s *Synchronizer) Arrange() {
	steps := s.graph.Steps()
	positions := s.arranger.Arrange(steps, s.graph.Transitions())

	for _, step := range steps {
		if pos, ok := positions[step.ID]; ok {
			p := pos
			s.graph = s.graph.UpdateStep(step.ID, graph.StepPatch{Position: &p})
		}
	}
}

// List derives the simple list projection.
func (s *Synchronizer) List() []ListRow {
	steps := s.graph.Steps()
	outgoing := make(map[string]int)
	incoming := make(map[string]int)

	for _, t := range s.graph.Transitions() {
		outgoing[t.From]++
		incoming[t.To]++
	}

	rows := make([]ListRow, 0, len(steps))
	for _, step := range steps {
		rows = append(rows, ListRow{
			ID:         step.ID,
			Name:       step.Name,
			Role:       step.Role,
			EscalateTo: step.EscalateTo,
			IsStart:    step.IsStart,
			IsEnd:      step.IsEnd,
			Outgoing:   outgoing[step.ID],
			Incoming:   incoming[step.ID],
		})
	}

	return rows
}

// Nodes derives the flow-diagram node projection.
func (s *Synchronizer) Nodes() []FlowNode {
	steps := s.graph.Steps()

	nodes := make([]FlowNode, 0, len(steps))
	for _, step := range steps {
		node := FlowNode{
			ID: step.ID,
			Data: NodeData{
				Label:   step.Name,
				Role:    step.Role,
				IsStart: step.IsStart,
				IsEnd:   step.IsEnd,
			},
		}

		if step.Position != nil {
			node.Position = *step.Position
		}

		nodes = append(nodes, node)
	}

	return nodes
}

// Edges derives the flow-diagram edge projection. A transition referencing a
// step absent from the snapshot is filtered out of the render set rather
// than crashing the view; the validator reports it so the user can fix it
// explicitly instead of having data vanish silently.
func (s *Synchronizer) Edges() []FlowEdge {
	edges := make([]FlowEdge, 0, s.graph.TransitionCount())

	for _, t := range s.graph.Transitions() {
		if !s.graph.HasStep(t.From) || !s.graph.HasStep(t.To) {
			continue
		}

		kind := EdgeKindDefault
		if t.IsReturn {
			kind = EdgeKindReturn
		}

		edges = append(edges, FlowEdge{
			ID:           t.ID,
			Source:       t.From,
			Target:       t.To,
			Label:        t.Name,
			Kind:         kind,
			SourceHandle: t.SourceHandle,
			TargetHandle: t.TargetHandle,
		})
	}

	return edges
}

// fillMissingPositions runs the arranger over the full topology but adopts
// coordinates only for steps that have none, so existing nodes never jump
// while the user is editing.
func (s *Synchronizer) fillMissingPositions() {
	steps := s.graph.Steps()

	missing := false

	for _, step := range steps {
		if step.Position == nil {
			missing = true

			break
		}
	}

	if !missing {
		return
	}

	positions := s.arranger.Arrange(steps, s.graph.Transitions())

	for _, step := range steps {
		if step.Position != nil {
			continue
		}

		if pos, ok := positions[step.ID]; ok {
			p := pos
			s.graph = s.graph.UpdateStep(step.ID, graph.StepPatch{Position: &p})
		}
	}
}
