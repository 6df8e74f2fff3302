package wire

import "github.com/hdts/flowkit/pkg/models"

// Payload is the JSON object the ticketing backend consumes on submission.
type Payload struct {
	Metadata MetadataPayload `json:"metadata"`
	Graph    GraphPayload    `json:"graph"`
}

// MetadataPayload carries the workflow identity and SLA tiers. Unset SLA
// tiers are omitted rather than sent as explicit nulls.
type MetadataPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
	Department  string `json:"department"`
	UrgentSLA   string `json:"urgent_sla,omitempty"`
	HighSLA     string `json:"high_sla,omitempty"`
	MediumSLA   string `json:"medium_sla,omitempty"`
	LowSLA      string `json:"low_sla,omitempty"`
}

// GraphPayload is the persisted step/transition graph.
type GraphPayload struct {
	Nodes []NodePayload `json:"nodes"`
	Edges []EdgePayload `json:"edges"`
}

// NodePayload is the persisted form of a step. Design coordinates are kept
// so the editor can restore the diagram; they carry no semantics.
type NodePayload struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Role        string        `json:"role"`
	EscalateTo  string        `json:"escalate_to"`
	Description string        `json:"description"`
	Instruction string        `json:"instruction"`
	Weight      float64       `json:"weight"`
	Design      DesignPayload `json:"design"`
	IsStart     bool          `json:"is_start"`
	IsEnd       bool          `json:"is_end"`
}

// DesignPayload is a node's diagram coordinate.
type DesignPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// EdgePayload is the persisted form of a transition. Handle identifiers and
// the return flag are editor-only state and are not part of the contract.
type EdgePayload struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Name string `json:"name"`
}

// FromWorkflow maps a workflow definition onto the wire payload.
func FromWorkflow(wf *models.Workflow) *Payload {
	p := &Payload{
		Metadata: MetadataPayload{
			Name:        wf.Name,
			Description: wf.Description,
			Category:    wf.Category,
			SubCategory: wf.SubCategory,
			Department:  wf.Department,
			UrgentSLA:   FormatDuration(wf.UrgentSLA),
			HighSLA:     FormatDuration(wf.HighSLA),
			MediumSLA:   FormatDuration(wf.MediumSLA),
			LowSLA:      FormatDuration(wf.LowSLA),
		},
		Graph: GraphPayload{
			Nodes: make([]NodePayload, 0, len(wf.Steps)),
			Edges: make([]EdgePayload, 0, len(wf.Transitions)),
		},
	}

	for _, s := range wf.Steps {
		node := NodePayload{
			ID:          s.ID,
			Name:        s.Name,
			Role:        s.Role,
			EscalateTo:  s.EscalateTo,
			Description: s.Description,
			Instruction: s.Instruction,
			Weight:      s.Weight,
			IsStart:     s.IsStart,
			IsEnd:       s.IsEnd,
		}

		if s.Position != nil {
			node.Design = DesignPayload{X: s.Position.X, Y: s.Position.Y}
		}

		p.Graph.Nodes = append(p.Graph.Nodes, node)
	}

	for _, t := range wf.Transitions {
		p.Graph.Edges = append(p.Graph.Edges, EdgePayload{
			ID:   t.ID,
			From: t.From,
			To:   t.To,
			Name: t.Name,
		})
	}

	return p
}
