// Package pkg provides the core libraries for wzrd, a script ⇄ node graph
// editor backend.
//
// # Overview
//
// wzrd turns a small scripting language into a dataflow node graph and back.
// Every supported expression becomes a node instantiated from a template;
// ports carry values between nodes; the graph is laid out left to right with
// the sink at the origin; and evaluating the sink regenerates the script text.
//
// # Architecture
//
// The typical data flow:
//
//	script text
//	     ↓
//	[script] package (parse into syntax trees)
//	     ↓
//	[core/importer] package (syntax trees → parsed nodes → graph)
//	     ↓
//	[core/dag] package (nodes, ports, connections)
//	     ↓
//	[core/layout] package (left-to-right placement)
//	     ↓
//	[core/eval] package (graph → script text)
//
// # Quick Start
//
// Import a script, lay it out and generate it back:
//
//	import (
//	    "github.com/matzehuels/wzrd/pkg/core/eval"
//	    "github.com/matzehuels/wzrd/pkg/core/layout"
//	    "github.com/matzehuels/wzrd/pkg/core/template"
//	    "github.com/matzehuels/wzrd/pkg/pipeline"
//	)
//
//	// 1. Import
//	g, sigs, _ := pipeline.Import("def main(a) return (48*(11+a)) end", template.NewCatalog(), nil)
//
//	// 2. Lay out
//	layout.Apply(g, layout.EstimateBoxes(g), layout.DefaultOptions())
//
//	// 3. Generate
//	text := eval.Evaluate(g, sigs, nil, nil) // def main(a) (48*(11+a)) end
//
// # Main Packages
//
// ## Core Domain Logic
//
// [core/template] - Node templates: label, code pattern with $N placeholders,
// typed input and output ports. The catalog holds the built-in templates and
// the registry the node picker entries.
//
// [core/dag] - The node graph: nodes with port instances, at most one
// connection per input, monotonic IDs and sink selection.
//
// [core/ast] - Syntax tree node types shared by the parser and the importer.
//
// [core/importer] - Turns syntax trees into parsed nodes and materializes them
// into a graph. Function definitions are recorded on a signature stack.
//
// [core/eval] - Evaluates the graph from its sink, substituting child code
// into placeholders and wrapping the result in the recorded signatures.
//
// [core/layout] - Auto-layout: the sink is anchored at the origin and
// upstream nodes are placed in columns to its left.
//
// [script] - Parser for the supported script subset.
//
// ## Serialization and Rendering
//
// [graph] - JSON and YAML documents for graphs and layouts.
//
// [render/nodelink] - Graphviz diagrams of a graph (DOT, SVG).
//
// [render] - Format conversion (SVG to PDF/PNG).
//
// ## Infrastructure
//
// [pipeline] - Import → layout → generate → render with caching, used by the
// CLI, the HTTP API and the watch mode.
//
// [cache] - Pipeline cache backends: file, memory, Redis and null.
//
// [store] - Graph persistence: file, memory, Redis and MongoDB.
//
// [config] - TOML configuration file.
//
// [observability] - Hooks for pipeline, cache and HTTP events, with a
// Prometheus implementation in [observability/prom].
//
// [errors] - Coded errors and input validation.
//
// [core/template]: https://pkg.go.dev/github.com/matzehuels/wzrd/pkg/core/template
// [core/dag]: https://pkg.go.dev/github.com/matzehuels/wzrd/pkg/core/dag
// [core/ast]: https://pkg.go.dev/github.com/matzehuels/wzrd/pkg/core/ast
// [core/importer]: https://pkg.go.dev/github.com/matzehuels/wzrd/pkg/core/importer
// [core/eval]: https://pkg.go.dev/github.com/matzehuels/wzrd/pkg/core/eval
// [core/layout]: https://pkg.go.dev/github.com/matzehuels/wzrd/pkg/core/layout
// [script]: https://pkg.go.dev/github.com/matzehuels/wzrd/pkg/script
// [graph]: https://pkg.go.dev/github.com/matzehuels/wzrd/pkg/graph
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/wzrd/pkg/render/nodelink
// [render]: https://pkg.go.dev/github.com/matzehuels/wzrd/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/wzrd/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/wzrd/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/wzrd/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/wzrd/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/wzrd/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/matzehuels/wzrd/pkg/observability/prom
// [errors]: https://pkg.go.dev/github.com/matzehuels/wzrd/pkg/errors
package pkg
