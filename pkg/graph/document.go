package graph

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/matzehuels/wzrd/pkg/core/dag"
	"github.com/matzehuels/wzrd/pkg/core/importer"
	"github.com/matzehuels/wzrd/pkg/core/template"
)

// Version is the current document format version.
const Version = 1

// ErrUnsupportedVersion is returned when decoding a document written by a
// newer format version.
var ErrUnsupportedVersion = errors.New("unsupported document version")

// =============================================================================
// Document - Graph Serialization
// =============================================================================

// Document is the canonical serialization of a node graph together with the
// function signatures collected while importing it.
type Document struct {
	Version     int                          `json:"version" yaml:"version"`
	Nodes       []Node                       `json:"nodes" yaml:"nodes"`
	Connections []dag.Connection             `json:"connections" yaml:"connections"`
	Signatures  []importer.FunctionSignature `json:"signatures,omitempty" yaml:"signatures,omitempty"`
}

// Node is a serialized graph node.
type Node struct {
	ID       dag.NodeID        `json:"id" yaml:"id"`
	Template template.Template `json:"template" yaml:"template"`
	Inputs   []Input           `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs  []Output          `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Position dag.Point         `json:"position" yaml:"position"`
	Output   bool              `json:"output,omitempty" yaml:"output,omitempty"`
}

// Input is a serialized input port. Value is the constant used when the port
// is not connected.
type Input struct {
	ID    dag.InputID       `json:"id" yaml:"id"`
	Name  string            `json:"name" yaml:"name"`
	Type  template.PortType `json:"type" yaml:"type"`
	Value *template.Value   `json:"value,omitempty" yaml:"value,omitempty"`
}

// Output is a serialized output port.
type Output struct {
	ID   dag.OutputID      `json:"id" yaml:"id"`
	Name string            `json:"name" yaml:"name"`
	Type template.PortType `json:"type" yaml:"type"`
}

// =============================================================================
// DAG ↔ Document Conversion
// =============================================================================

// FromDAG converts a graph and its signature stack to a Document. Nodes are
// listed in insertion order; sigs may be nil.
func FromDAG(g *dag.Graph, sigs *importer.SignatureStack) Document {
	doc := Document{
		Version:     Version,
		Nodes:       make([]Node, 0, g.NodeCount()),
		Connections: g.Connections(),
		Signatures:  sigs.All(),
	}
	for _, id := range g.NodeIDs() {
		doc.Nodes = append(doc.Nodes, nodeFromDAG(g, g.MustNode(id)))
	}
	return doc
}

// ToDAG rebuilds a graph and signature stack from a Document. IDs are
// preserved. Returns an error if the document violates graph constraints.
func ToDAG(doc Document) (*dag.Graph, *importer.SignatureStack, error) {
	if doc.Version > Version {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}

	g := dag.New()
	for _, n := range doc.Nodes {
		rec := dag.NodeRecord{Node: dag.Node{
			ID:       n.ID,
			Template: n.Template,
			Position: n.Position,
			Output:   n.Output,
		}}
		for _, in := range n.Inputs {
			rec.Inputs = append(rec.Inputs, dag.InputPort{ID: in.ID, Name: in.Name, Type: in.Type, Value: in.Value})
		}
		for _, out := range n.Outputs {
			rec.Outputs = append(rec.Outputs, dag.OutputPort{ID: out.ID, Name: out.Name, Type: out.Type})
		}
		if err := g.Restore(rec); err != nil {
			return nil, nil, fmt.Errorf("restore node %d: %w", n.ID, err)
		}
	}

	for _, c := range doc.Connections {
		if err := g.Connect(c.From, c.To); err != nil {
			return nil, nil, fmt.Errorf("connect %d→%d: %w", c.From, c.To, err)
		}
	}

	return g, importer.NewSignatureStack(doc.Signatures...), nil
}

// UnmarshalGraph deserializes JSON bytes to a Document.
func UnmarshalGraph(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

func nodeFromDAG(g *dag.Graph, n *dag.Node) Node {
	node := Node{
		ID:       n.ID,
		Template: n.Template.Clone(),
		Position: n.Position,
		Output:   n.Output,
	}
	for _, id := range n.Inputs {
		if p, ok := g.Input(id); ok {
			in := Input{ID: p.ID, Name: p.Name, Type: p.Type}
			if p.Value != nil {
				in.Value = p.Value.Ptr()
			}
			node.Inputs = append(node.Inputs, in)
		}
	}
	for _, id := range n.Outputs {
		if p, ok := g.Output(id); ok {
			node.Outputs = append(node.Outputs, Output{ID: p.ID, Name: p.Name, Type: p.Type})
		}
	}
	return node
}
