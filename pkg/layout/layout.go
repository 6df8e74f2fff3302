// Package layout assigns diagram coordinates to workflow steps. The ordering
// of the graph is delegated to gonum's topology algorithms; this package only
// owns the shape adaptation and the coordinate grid.
package layout

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/hdts/flowkit/pkg/models"
)

// Default node footprint and spacing, in diagram units.
const (
	defaultNodeWidth  = 180.0
	defaultNodeHeight = 80.0
	defaultColumnGap  = 80.0
	defaultRowGap     = 40.0
)

// Engine computes left-to-right layered layouts. The zero value is not
// usable; construct with NewEngine.
type Engine struct {
	NodeWidth  float64
	NodeHeight float64
	ColumnGap  float64
	RowGap     float64
}

// NewEngine returns an engine with the default grid geometry.
func NewEngine() *Engine {
	return &Engine{
		NodeWidth:  defaultNodeWidth,
		NodeHeight: defaultNodeHeight,
		ColumnGap:  defaultColumnGap,
		RowGap:     defaultRowGap,
	}
}

// Arrange returns a position for every step. It is a pure function of the
// graph topology: current positions are ignored, the inputs are never
// mutated, and repeated calls on the same graph yield the same result.
//
// Steps are placed in columns by graph depth. Cycles are tolerated: strongly
// connected components share a column, so a rework loop never breaks the
// arrangement. Transitions referencing unknown steps are ignored here; the
// validator reports them separately.
func (e *Engine) Arrange(steps []*models.Step, transitions []*models.Transition) map[string]models.Position {
	if len(steps) == 0 {
		return map[string]models.Position{}
	}

	g := simple.NewDirectedGraph()
	idByStep := make(map[string]int64, len(steps))
	stepByID := make(map[int64]string, len(steps))

	for i, s := range steps {
		nid := int64(i)
		idByStep[s.ID] = nid
		stepByID[nid] = s.ID
		g.AddNode(simple.Node(nid))
	}

	for _, t := range transitions {
		from, okFrom := idByStep[t.From]
		to, okTo := idByStep[t.To]

		if !okFrom || !okTo || from == to {
			continue
		}

		g.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
	}

	columns := e.columnize(g, steps, idByStep)

	positions := make(map[string]models.Position, len(steps))
	rows := make(map[int]int)

	// Walk steps in their insertion order so rows within a column stay
	// stable across repeated calls.
	for _, s := range steps {
		col := columns[idByStep[s.ID]]
		row := rows[col]
		rows[col] = row + 1

		positions[s.ID] = models.Position{
			X: float64(col) * (e.NodeWidth + e.ColumnGap),
			Y: float64(row) * (e.NodeHeight + e.RowGap),
		}
	}

	return positions
}

// columnize assigns each node a column index: the longest predecessor chain
// in the condensation of the graph. Tarjan's SCCs arrive in reverse
// topological order, so walking them backwards visits predecessors first.
func (e *Engine) columnize(g *simple.DirectedGraph, steps []*models.Step, idByStep map[string]int64) map[int64]int {
	sccs := topo.TarjanSCC(g)

	component := make(map[int64]int, len(steps))
	for i, scc := range sccs {
		for _, n := range scc {
			component[n.ID()] = i
		}
	}

	columnByComponent := make(map[int]int, len(sccs))

	for i := len(sccs) - 1; i >= 0; i-- {
		col := 0

		for _, n := range sccs[i] {
			preds := g.To(n.ID())
			for preds.Next() {
				p := preds.Node().ID()
				if component[p] == i {
					continue
				}

				if c := columnByComponent[component[p]] + 1; c > col {
					col = c
				}
			}
		}

		columnByComponent[i] = col
	}

	columns := make(map[int64]int, len(steps))
	for nid, comp := range component {
		columns[nid] = columnByComponent[comp]
	}

	return columns
}
