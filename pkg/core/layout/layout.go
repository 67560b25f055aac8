// Package layout positions graph nodes so data flows left to right into the
// sink.
//
// The sink is placed at the origin. A breadth-first walk backwards over input
// connections then stacks each node's immediate input ancestors in a column
// to its left, vertically centered on the node's midpoint. Ancestors of
// ancestors fan out further left as the walk proceeds.
//
// Layout reads only rendered bounding boxes ([BoxSource]) and connection
// topology. It is idempotent as long as box sizes stay stable between passes.
package layout

import (
	"math"

	"github.com/matzehuels/wzrd/pkg/core/dag"
)

// Default spacing.
const (
	DefaultHGap = 80.0
	DefaultVGap = 20.0
)

// Box is a rendered node size.
type Box struct {
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// BoxSource reports the rendered bounding box of a node.
type BoxSource interface {
	Box(id dag.NodeID) (Box, bool)
}

// Boxes is a BoxSource backed by a map.
type Boxes map[dag.NodeID]Box

// Box implements BoxSource.
func (b Boxes) Box(id dag.NodeID) (Box, bool) {
	box, ok := b[id]
	return box, ok
}

// Options configures a layout pass.
type Options struct {
	HGap   float64
	VGap   float64
	Origin dag.Point

	// Fallback is used for nodes the BoxSource does not know.
	Fallback Box
}

// DefaultOptions returns the standard spacing with the sink at (0, 0).
func DefaultOptions() Options {
	return Options{HGap: DefaultHGap, VGap: DefaultVGap, Fallback: Box{W: 160, H: 60}}
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	Min dag.Point `json:"min" yaml:"min"`
	Max dag.Point `json:"max" yaml:"max"`
}

// Viewport describes where the host should look after a layout pass.
type Viewport struct {
	// Center is the sink's midpoint.
	Center dag.Point `json:"center" yaml:"center"`

	// Bounds encloses every positioned node.
	Bounds Rect `json:"bounds" yaml:"bounds"`
}

// Result holds computed top-left positions for the nodes reachable from the
// sink, in visit order.
type Result struct {
	Order     []dag.NodeID             `json:"order" yaml:"order"`
	Positions map[dag.NodeID]dag.Point `json:"positions" yaml:"positions"`
	Viewport  Viewport                 `json:"viewport" yaml:"viewport"`
}

// Compute runs a layout pass without modifying g. It reports false when the
// graph has no sink.
func Compute(g *dag.Graph, boxes BoxSource, opts Options) (Result, bool) {
	sink, ok := g.Sink()
	if !ok {
		return Result{}, false
	}
	if boxes == nil {
		boxes = Boxes{}
	}
	size := func(id dag.NodeID) Box {
		if b, ok := boxes.Box(id); ok {
			return b
		}
		return opts.Fallback
	}

	res := Result{Positions: map[dag.NodeID]dag.Point{sink: opts.Origin}}
	res.Order = append(res.Order, sink)

	queue := []dag.NodeID{sink}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		var ups []dag.NodeID
		for _, up := range g.Upstream(cur) {
			// A node shared by several consumers keeps its first placement.
			if _, placed := res.Positions[up]; !placed {
				ups = append(ups, up)
			}
		}
		if len(ups) == 0 {
			continue
		}

		var width, height float64
		for i, up := range ups {
			b := size(up)
			width = math.Max(width, b.W)
			height += b.H
			if i > 0 {
				height += opts.VGap
			}
		}

		at := res.Positions[cur]
		x := at.X - opts.HGap - width
		y := at.Y + size(cur).H/2 - height/2
		for _, up := range ups {
			res.Positions[up] = dag.Point{X: x, Y: y}
			res.Order = append(res.Order, up)
			y += size(up).H + opts.VGap
			queue = append(queue, up)
		}
	}

	sb := size(sink)
	res.Viewport.Center = dag.Point{X: opts.Origin.X + sb.W/2, Y: opts.Origin.Y + sb.H/2}
	res.Viewport.Bounds = bounds(res, size)
	return res, true
}

// Apply runs Compute and writes the positions into g.
func Apply(g *dag.Graph, boxes BoxSource, opts Options) (Result, bool) {
	res, ok := Compute(g, boxes, opts)
	if !ok {
		return res, false
	}
	for id, p := range res.Positions {
		_ = g.SetPosition(id, p)
	}
	return res, true
}

func bounds(res Result, size func(dag.NodeID) Box) Rect {
	r := Rect{
		Min: dag.Point{X: math.Inf(1), Y: math.Inf(1)},
		Max: dag.Point{X: math.Inf(-1), Y: math.Inf(-1)},
	}
	for id, p := range res.Positions {
		b := size(id)
		r.Min.X = math.Min(r.Min.X, p.X)
		r.Min.Y = math.Min(r.Min.Y, p.Y)
		r.Max.X = math.Max(r.Max.X, p.X+b.W)
		r.Max.Y = math.Max(r.Max.Y, p.Y+b.H)
	}
	return r
}
