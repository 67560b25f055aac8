// Package template defines node blueprints for the dataflow graph.
//
// # Overview
//
// A [Template] pairs ordered, typed ports with an optional code pattern. When
// a graph node is created from a template, the template is cloned so the node
// owns its own copy; attaching a literal default to a node's input never
// touches the blueprint it came from.
//
// Patterns use positional placeholders ($0, $1, ...). The evaluator binds them
// to resolved input text in first-appearance order:
//
//	($0+$1)        // Add
//	($0*$1)        // Multiply
//
// # Catalog
//
// The built-in blueprints are identified by [Kind] and held in an immutable
// [Catalog]. Create it once with [NewCatalog] and pass it by reference:
//
//	cat := template.NewCatalog()
//	add := cat.Node(template.Add)       // independent clone
//	mul, ok := cat.Find("*")             // lookup by label
//
// # Registry
//
// [Registry] is the open-ended, ordered list of templates shown to node-picker
// collaborators. [Registry.CreateNode] appends custom templates; it never
// changes what [Catalog.Find] returns.
//
// # Values
//
// [Value] is the literal carried by an unconnected input port. It is a tagged
// variant of string, integer and float, with a lossless JSON encoding.
package template
