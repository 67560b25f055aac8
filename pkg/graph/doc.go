// Package graph provides the serialization format for node graphs.
//
// This package defines the canonical wire format for wzrd's graph data, used
// for JSON files, API payloads, persistence and cache keys.
//
// # Architecture
//
// The package sits at the serialization boundary between the in-memory
// representation and external formats:
//
//   - [Document]: serialization type (this package)
//   - pkg/core/dag.Graph: arena-backed graph store
//   - pkg/core/importer.SignatureStack: function signatures from import
//   - pkg/core/layout.Result: computed positions
//
// Use [FromDAG]/[ToDAG] to convert between them.
//
// # Round-Trip Fidelity
//
// Every entity survives a round trip unchanged: node, port and connection IDs
// (including gaps left by removed nodes), template clones with patterns and
// defaults, constant values with their variant, positions, the designated
// output marker and the signature stack. A graph saved, loaded and evaluated
// with a fresh cache produces the same text as before it was saved.
//
// # Document Format
//
//	{
//	  "version": 1,
//	  "nodes": [
//	    {
//	      "id": 0,
//	      "template": {"label": "Constant", "inputs": [...], "outputs": [...]},
//	      "inputs": [{"id": 0, "name": "value", "type": "any", "value": {"integer": 48}}],
//	      "outputs": [{"id": 0, "name": "out", "type": "any"}],
//	      "position": {"x": -400, "y": 0}
//	    }
//	  ],
//	  "connections": [{"from": 0, "to": 3}],
//	  "signatures": [{"name": "main", "params": ["a"]}]
//	}
//
// Common operations:
//
//	doc, _ := graph.ReadGraphFile("graph.json")    // File → Document
//	graph.WriteGraphFile(g, sigs, "graph.json")    // Graph → File
//	data, _ := graph.MarshalGraph(g, sigs)         // Graph → []byte
//	g, sigs, _ := graph.ToDAG(doc)                 // Document → Graph
//
// YAML export ([MarshalYAML]) is provided for human inspection; it is not
// read back.
package graph
