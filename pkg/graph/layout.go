package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/matzehuels/wzrd/pkg/core/dag"
	"github.com/matzehuels/wzrd/pkg/core/layout"
)

// =============================================================================
// Layout - Computed Positions
// =============================================================================

// Layout is the serialization format for an auto-layout pass.
type Layout struct {
	Sink      dag.NodeID      `json:"sink" yaml:"sink"`
	Positions []Position      `json:"positions" yaml:"positions"`
	Viewport  layout.Viewport `json:"viewport" yaml:"viewport"`
}

// Position is one node's computed top-left corner.
type Position struct {
	ID dag.NodeID `json:"id" yaml:"id"`
	X  float64    `json:"x" yaml:"x"`
	Y  float64    `json:"y" yaml:"y"`
}

// FromLayout converts a layout result. Positions are listed in visit order,
// so the sink comes first.
func FromLayout(res layout.Result) Layout {
	out := Layout{Viewport: res.Viewport, Positions: make([]Position, 0, len(res.Order))}
	if len(res.Order) > 0 {
		out.Sink = res.Order[0]
	}
	for _, id := range res.Order {
		p := res.Positions[id]
		out.Positions = append(out.Positions, Position{ID: id, X: p.X, Y: p.Y})
	}
	return out
}

// Apply writes the layout positions into g, skipping unknown nodes.
func (l Layout) Apply(g *dag.Graph) {
	for _, p := range l.Positions {
		_ = g.SetPosition(p.ID, dag.Point{X: p.X, Y: p.Y})
	}
}

// Sorted returns the positions ordered by node ID.
func (l Layout) Sorted() []Position {
	out := slices.Clone(l.Positions)
	slices.SortFunc(out, func(a, b Position) int { return int(a.ID) - int(b.ID) })
	return out
}

// MarshalLayout serializes a layout to JSON.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes to a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteLayoutFile writes a layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
