// Package dag provides the persistent dataflow graph: nodes with typed input
// and output ports, and directed connections from outputs to inputs.
//
// # Overview
//
// Every node is instantiated from a [template.Template] clone and owns one
// [InputPort] per template input and one [OutputPort] per template output.
// A [Connection] links one output port to one input port. Data flows along
// connections toward the sink, the node whose outputs feed nothing.
//
//	g := dag.New()
//	c := g.AddNode(cat.Node(template.Constant))
//	add := g.AddNode(cat.Node(template.Add))
//	g.Connect(g.MustNode(c).Outputs[0], g.MustNode(add).Inputs[0])
//
// # Storage
//
// The graph is an arena: one append-only slice per entity kind (nodes, input
// ports, output ports), with cross-references held as plain integer indices
// ([NodeID], [InputID], [OutputID]) rather than pointers. Removing a node
// leaves a tombstone in each arena, so an ID is never handed out twice and a
// stale ID reliably reports "unknown" instead of aliasing a newer entity.
//
// # Invariants
//
//   - Each input port has at most one incoming connection; [Graph.Connect]
//     returns [ErrInputOccupied] otherwise. Output ports may fan out freely.
//   - The graph is acyclic. Graphs built by the importer are trees; Connect
//     refuses edges that would close a cycle ([ErrGraphHasCycle]).
//
// # Sink Selection
//
// [Graph.Sink] prefers a node explicitly marked as the designated output
// ([Graph.SetOutput]). Without a marker it falls back to the last node, in
// insertion order, that has no outgoing connection. [Graph.Sinks] exposes all
// candidates so callers can detect ambiguity.
//
// # Concurrency
//
// A Graph is not safe for concurrent use. Import and evaluation need exclusive
// access for their duration; callers must synchronize.
package dag
