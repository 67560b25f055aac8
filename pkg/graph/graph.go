package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/wzrd/pkg/core/dag"
	"github.com/matzehuels/wzrd/pkg/core/importer"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a graph to JSON bytes.
func MarshalGraph(g *dag.Graph, sigs *importer.SignatureStack) ([]byte, error) {
	return MarshalDocument(FromDAG(g, sigs))
}

// MarshalDocument converts a document to JSON bytes.
func MarshalDocument(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a graph to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g *dag.Graph, sigs *importer.SignatureStack, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(FromDAG(g, sigs), f)
}

// WriteGraph writes a graph as JSON to an io.Writer.
func WriteGraph(g *dag.Graph, sigs *importer.SignatureStack, w io.Writer) error {
	return writeGraphTo(FromDAG(g, sigs), w)
}

// ReadGraphFile reads a JSON file and returns the decoded Document.
func ReadGraphFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}

// ReadGraph decodes a JSON document from an io.Reader.
func ReadGraph(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode: %w", err)
	}
	return doc, nil
}

// LoadGraph decodes JSON bytes straight into a graph and signature stack.
func LoadGraph(data []byte) (*dag.Graph, *importer.SignatureStack, error) {
	doc, err := UnmarshalGraph(data)
	if err != nil {
		return nil, nil, fmt.Errorf("decode: %w", err)
	}
	return ToDAG(doc)
}

// MarshalYAML renders a graph as YAML for inspection.
func MarshalYAML(g *dag.Graph, sigs *importer.SignatureStack) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(FromDAG(g, sigs)); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(doc Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
