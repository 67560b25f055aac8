package layout

import (
	"math"
	"unicode/utf8"

	"github.com/matzehuels/wzrd/pkg/core/dag"
)

// Metrics used by EstimateBoxes, in graph units.
const (
	charWidth   = 8.0
	rowHeight   = 22.0
	titleHeight = 28.0
	padding     = 16.0
	minWidth    = 80.0
)

// EstimateBoxes approximates rendered node sizes for hosts that do not draw
// nodes themselves: a title row plus one row per port, as wide as the
// longest text.
func EstimateBoxes(g *dag.Graph) Boxes {
	boxes := make(Boxes, g.NodeCount())
	for _, id := range g.NodeIDs() {
		n := g.MustNode(id)
		longest := utf8.RuneCountInString(n.Label())
		for _, in := range n.Inputs {
			if p, ok := g.Input(in); ok {
				longest = max(longest, utf8.RuneCountInString(p.Name)+valueWidth(p))
			}
		}
		for _, out := range n.Outputs {
			if p, ok := g.Output(out); ok {
				longest = max(longest, utf8.RuneCountInString(p.Name))
			}
		}
		rows := max(len(n.Inputs), len(n.Outputs))
		boxes[id] = Box{
			W: math.Max(minWidth, float64(longest)*charWidth+2*padding),
			H: titleHeight + float64(rows)*rowHeight,
		}
	}
	return boxes
}

// valueWidth is the extra width of an inline constant editor.
func valueWidth(p *dag.InputPort) int {
	if p.Value == nil {
		return 0
	}
	return 1 + utf8.RuneCountInString(p.Value.Render())
}
