// Package template provides the starter workflow graphs the editor offers
// when a new definition is created. Applying a template mints fresh step and
// transition IDs so applying the same template twice never collides.
package template

import (
	"fmt"
	"sort"

	"github.com/hdts/flowkit/pkg/graph"
	"github.com/hdts/flowkit/pkg/models"
)

// Template is a named step/transition preset. Step keys are local to the
// blueprint and replaced by generated IDs on apply.
type Template struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`

	steps       []stepBlueprint
	transitions []transitionBlueprint
}

type stepBlueprint struct {
	key         string
	name        string
	role        string // empty: use the fallback role
	escalateTo  string
	instruction string
	isStart     bool
	isEnd       bool
}

type transitionBlueprint struct {
	from     string
	to       string
	name     string
	isReturn bool
}

var registry = map[string]Template{
	"simple-request": {
		Name:        "simple-request",
		Title:       "Simple Request",
		Description: "One handling step between submission and completion.",
		steps: []stepBlueprint{
			{key: "submit", name: "Submit", isStart: true},
			{key: "complete", name: "Complete", isEnd: true},
		},
		transitions: []transitionBlueprint{
			{from: "submit", to: "complete", name: "Process"},
		},
	},
	"approval": {
		Name:        "approval",
		Title:       "Approval",
		Description: "Review with an approve path and a rework loop back to the requester.",
		steps: []stepBlueprint{
			{key: "submit", name: "Submit", isStart: true},
			{key: "review", name: "Review", role: "supervisor"},
			{key: "complete", name: "Complete", isEnd: true},
		},
		transitions: []transitionBlueprint{
			{from: "submit", to: "review", name: "Request Approval"},
			{from: "review", to: "complete", name: "Approve"},
			{from: "review", to: "submit", name: "Reject", isReturn: true},
		},
	},
	"escalation": {
		Name:        "escalation",
		Title:       "Escalation",
		Description: "Triage with a timed hand-off to a manager when investigation stalls.",
		steps: []stepBlueprint{
			{key: "triage", name: "Triage", isStart: true},
			{
				key:         "investigate",
				name:        "Investigate",
				escalateTo:  "manager",
				instruction: "Escalates automatically when the SLA timer for this step expires.",
			},
			{key: "resolve", name: "Resolve", isEnd: true},
		},
		transitions: []transitionBlueprint{
			{from: "triage", to: "investigate", name: "Assign"},
			{from: "investigate", to: "resolve", name: "Resolve"},
			{from: "investigate", to: "triage", name: "Reassign", isReturn: true},
		},
	},
}

// All returns every template sorted by name.
func All() []Template {
	out := make([]Template, 0, len(registry))
	for _, t := range registry {
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// Find looks a template up by name.
func Find(name string) (Template, error) {
	t, ok := registry[name]
	if !ok {
		return Template{}, fmt.Errorf("unknown template %q", name)
	}

	return t, nil
}

// Apply instantiates the template as a fresh graph snapshot. Steps without a
// blueprint role get the fallback role from the supplied registry, so a
// freshly applied template always validates on the role check.
func (t Template) Apply(roles []models.Role) *graph.Graph {
	fallback := models.FallbackRole(roles)

	idByKey := make(map[string]string, len(t.steps))
	steps := make([]*models.Step, 0, len(t.steps))

	for _, bp := range t.steps {
		id := graph.NewID()
		idByKey[bp.key] = id

		role := bp.role
		if role == "" || !roleKnown(roles, role) {
			role = fallback.ID
		}

		steps = append(steps, &models.Step{
			ID:          id,
			Name:        bp.name,
			Role:        role,
			EscalateTo:  bp.escalateTo,
			Instruction: bp.instruction,
			Weight:      models.DefaultStepWeight,
			IsStart:     bp.isStart,
			IsEnd:       bp.isEnd,
		})
	}

	transitions := make([]*models.Transition, 0, len(t.transitions))
	for _, bp := range t.transitions {
		transitions = append(transitions, &models.Transition{
			ID:       graph.NewID(),
			From:     idByKey[bp.from],
			To:       idByKey[bp.to],
			Name:     bp.name,
			IsReturn: bp.isReturn,
		})
	}

	return graph.New(steps, transitions)
}

func roleKnown(roles []models.Role, id string) bool {
	if len(roles) == 0 {
		for _, r := range models.DefaultRoles {
			if r.ID == id {
				return true
			}
		}

		return false
	}

	for _, r := range roles {
		if r.ID == id {
			return true
		}
	}

	return false
}
