package importer

import (
	"github.com/matzehuels/wzrd/pkg/core/dag"
)

// Placer returns the initial display position for a node at the given tree
// depth (0 = root) that is the index-th node placed at that depth.
type Placer func(depth, index int) dag.Point

// Column spacing used by DefaultPlacer.
const (
	ColumnWidth = 200.0
	RowHeight   = 100.0
)

// DefaultPlacer lays nodes out in columns by depth, the root rightmost.
func DefaultPlacer(depth, index int) dag.Point {
	return dag.Point{X: -float64(depth) * ColumnWidth, Y: float64(index) * RowHeight}
}

// Materialize creates a node per ParsedNode, children before parents, and
// wires each child's first output to the parent input at the child's
// position. It returns the created IDs in creation order.
//
// A child without outputs, or a child beyond the parent's input count, leaves
// the input unconnected.
func Materialize(g *dag.Graph, root *ParsedNode, place Placer) []dag.NodeID {
	if root == nil {
		return nil
	}
	if place == nil {
		place = DefaultPlacer
	}
	m := &materializer{g: g, place: place, perDepth: make(map[int]int)}
	m.node(root, 0)
	return m.order
}

type materializer struct {
	g        *dag.Graph
	place    Placer
	perDepth map[int]int
	order    []dag.NodeID
}

func (m *materializer) node(p *ParsedNode, depth int) dag.NodeID {
	childIDs := make([]dag.NodeID, len(p.Children))
	for i, c := range p.Children {
		childIDs[i] = m.node(c, depth+1)
	}

	id := m.g.AddNode(p.Template)
	_ = m.g.SetPosition(id, m.place(depth, m.perDepth[depth]))
	m.perDepth[depth]++
	if p.Output {
		_ = m.g.SetOutput(id, true)
	}
	m.order = append(m.order, id)

	parent := m.g.MustNode(id)
	for i, cid := range childIDs {
		child := m.g.MustNode(cid)
		if len(child.Outputs) == 0 || i >= len(parent.Inputs) {
			continue
		}
		// Fresh ports on a tree cannot be occupied or form a cycle.
		_ = m.g.Connect(child.Outputs[0], parent.Inputs[i])
	}
	return id
}
