package dag

import (
	"errors"
	"slices"

	"github.com/matzehuels/wzrd/pkg/core/template"
)

var (
	// ErrUnknownNode is returned when a NodeID does not refer to a live node.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownInput is returned when an InputID does not refer to a live input port.
	ErrUnknownInput = errors.New("unknown input port")

	// ErrUnknownOutput is returned when an OutputID does not refer to a live output port.
	ErrUnknownOutput = errors.New("unknown output port")

	// ErrInputOccupied is returned by [Graph.Connect] when the input port
	// already has an incoming connection.
	ErrInputOccupied = errors.New("input port already connected")

	// ErrGraphHasCycle is returned by [Graph.Connect] when the new edge would
	// close a cycle, and by [Graph.Validate] when a cycle is found.
	ErrGraphHasCycle = errors.New("graph contains a cycle")

	// ErrIDInUse is returned by [Graph.Restore] when a record reuses an ID
	// already allocated in the arena.
	ErrIDInUse = errors.New("id already allocated")
)

// NodeID indexes the node arena.
type NodeID int

// InputID indexes the input port arena.
type InputID int

// OutputID indexes the output port arena.
type OutputID int

// Point is a display position in graph space.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is a graph vertex. Inputs and Outputs list the node's port IDs in
// template order.
type Node struct {
	ID       NodeID
	Template template.Template
	Inputs   []InputID
	Outputs  []OutputID
	Position Point

	// Output marks the designated evaluation root.
	Output bool
}

// Label returns the template label.
func (n *Node) Label() string { return n.Template.Label }

// InputPort is a concrete input slot. Value is the constant used when no
// connection feeds the port; it may be nil.
type InputPort struct {
	ID    InputID
	Node  NodeID
	Name  string
	Type  template.PortType
	Value *template.Value
}

// OutputPort is a concrete output slot.
type OutputPort struct {
	ID   OutputID
	Node NodeID
	Name string
	Type template.PortType
}

// Connection is a directed edge from an output port to an input port.
type Connection struct {
	From OutputID `json:"from" yaml:"from"`
	To   InputID  `json:"to" yaml:"to"`
}

type slot[T any] struct {
	v    T
	dead bool
}

// Graph is the arena-backed dataflow graph. The zero value is not usable;
// create one with New.
type Graph struct {
	nodes   []slot[Node]
	inputs  []slot[InputPort]
	outputs []slot[OutputPort]
	conns   map[InputID]OutputID

	// consumers mirrors conns from the source side.
	consumers map[OutputID][]InputID
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		conns:     make(map[InputID]OutputID),
		consumers: make(map[OutputID][]InputID),
	}
}

// =============================================================================
// Nodes
// =============================================================================

// AddNode instantiates t as a new node and returns its ID. The template is
// cloned; each input port starts with a copy of its template default.
func (g *Graph) AddNode(t template.Template) NodeID {
	t = t.Clone()
	id := NodeID(len(g.nodes))
	n := Node{ID: id, Template: t}

	for _, p := range t.Inputs {
		in := InputID(len(g.inputs))
		g.inputs = append(g.inputs, slot[InputPort]{v: InputPort{
			ID:    in,
			Node:  id,
			Name:  p.Name,
			Type:  p.Type,
			Value: p.Default,
		}})
		n.Inputs = append(n.Inputs, in)
	}
	for _, p := range t.Outputs {
		out := OutputID(len(g.outputs))
		g.outputs = append(g.outputs, slot[OutputPort]{v: OutputPort{
			ID:   out,
			Node: id,
			Name: p.Name,
			Type: p.Type,
		}})
		n.Outputs = append(n.Outputs, out)
	}

	g.nodes = append(g.nodes, slot[Node]{v: n})
	return id
}

// Node returns the live node with the given ID. The pointer refers to the
// arena entry, so edits (e.g. Position) affect the graph.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	if id < 0 || int(id) >= len(g.nodes) || g.nodes[id].dead {
		return nil, false
	}
	return &g.nodes[id].v, true
}

// MustNode is like Node but panics when id is unknown.
func (g *Graph) MustNode(id NodeID) *Node {
	n, ok := g.Node(id)
	if !ok {
		panic("dag: unknown node")
	}
	return n
}

// NodeIDs returns the IDs of all live nodes in insertion order.
func (g *Graph) NodeIDs() []NodeID {
	ids := make([]NodeID, 0, len(g.nodes))
	for i := range g.nodes {
		if !g.nodes[i].dead {
			ids = append(ids, NodeID(i))
		}
	}
	return ids
}

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() int {
	count := 0
	for i := range g.nodes {
		if !g.nodes[i].dead {
			count++
		}
	}
	return count
}

// RemoveNode tombstones a node and its ports, dropping every connection that
// touches them. IDs of removed entities are never reused.
func (g *Graph) RemoveNode(id NodeID) error {
	n, ok := g.Node(id)
	if !ok {
		return ErrUnknownNode
	}
	for _, in := range n.Inputs {
		g.Disconnect(in)
		g.inputs[in].dead = true
	}
	for _, out := range n.Outputs {
		for _, in := range g.consumers[out] {
			delete(g.conns, in)
		}
		delete(g.consumers, out)
		g.outputs[out].dead = true
	}
	g.nodes[id].dead = true
	return nil
}

// SetPosition moves a node.
func (g *Graph) SetPosition(id NodeID, p Point) error {
	n, ok := g.Node(id)
	if !ok {
		return ErrUnknownNode
	}
	n.Position = p
	return nil
}

// SetOutput marks or unmarks a node as the designated evaluation root.
func (g *Graph) SetOutput(id NodeID, output bool) error {
	n, ok := g.Node(id)
	if !ok {
		return ErrUnknownNode
	}
	n.Output = output
	return nil
}

// =============================================================================
// Ports
// =============================================================================

// Input returns the live input port with the given ID.
func (g *Graph) Input(id InputID) (*InputPort, bool) {
	if id < 0 || int(id) >= len(g.inputs) || g.inputs[id].dead {
		return nil, false
	}
	return &g.inputs[id].v, true
}

// Output returns the live output port with the given ID.
func (g *Graph) Output(id OutputID) (*OutputPort, bool) {
	if id < 0 || int(id) >= len(g.outputs) || g.outputs[id].dead {
		return nil, false
	}
	return &g.outputs[id].v, true
}

// SetValue replaces the constant carried by an input port.
func (g *Graph) SetValue(id InputID, v *template.Value) error {
	in, ok := g.Input(id)
	if !ok {
		return ErrUnknownInput
	}
	if v != nil {
		v = v.Ptr()
	}
	in.Value = v
	return nil
}

// =============================================================================
// Connections
// =============================================================================

// Connect adds a connection from an output port to an input port.
// It returns ErrInputOccupied when the input already has a source and
// ErrGraphHasCycle when the edge would make the graph cyclic.
func (g *Graph) Connect(from OutputID, to InputID) error {
	out, ok := g.Output(from)
	if !ok {
		return ErrUnknownOutput
	}
	in, ok := g.Input(to)
	if !ok {
		return ErrUnknownInput
	}
	if _, taken := g.conns[to]; taken {
		return ErrInputOccupied
	}
	if out.Node == in.Node || g.reaches(in.Node, out.Node) {
		return ErrGraphHasCycle
	}
	g.conns[to] = from
	g.consumers[from] = append(g.consumers[from], to)
	return nil
}

// Disconnect removes the connection feeding an input port. It reports whether
// a connection existed.
func (g *Graph) Disconnect(to InputID) bool {
	from, ok := g.conns[to]
	if !ok {
		return false
	}
	delete(g.conns, to)
	ins := slices.DeleteFunc(g.consumers[from], func(in InputID) bool { return in == to })
	if len(ins) == 0 {
		delete(g.consumers, from)
	} else {
		g.consumers[from] = ins
	}
	return true
}

// Connection returns the output port feeding an input port, if any.
func (g *Graph) Connection(to InputID) (OutputID, bool) {
	from, ok := g.conns[to]
	return from, ok
}

// Connections returns all connections ordered by target input ID.
func (g *Graph) Connections() []Connection {
	out := make([]Connection, 0, len(g.conns))
	for to, from := range g.conns {
		out = append(out, Connection{From: from, To: to})
	}
	slices.SortFunc(out, func(a, b Connection) int { return int(a.To) - int(b.To) })
	return out
}

// ConnectionCount returns the number of connections.
func (g *Graph) ConnectionCount() int { return len(g.conns) }

// Consumers returns the input ports fed by an output port, ordered by ID.
func (g *Graph) Consumers(from OutputID) []InputID {
	if len(g.consumers[from]) == 0 {
		return nil
	}
	ins := slices.Clone(g.consumers[from])
	slices.Sort(ins)
	return ins
}

// HasOutgoing reports whether any output port of the node is connected.
func (g *Graph) HasOutgoing(id NodeID) bool {
	n, ok := g.Node(id)
	if !ok {
		return false
	}
	for _, out := range n.Outputs {
		if len(g.consumers[out]) > 0 {
			return true
		}
	}
	return false
}

// SourceNode returns the node feeding an input port, if connected.
func (g *Graph) SourceNode(to InputID) (NodeID, bool) {
	from, ok := g.conns[to]
	if !ok {
		return 0, false
	}
	out, ok := g.Output(from)
	if !ok {
		return 0, false
	}
	return out.Node, true
}

// Upstream returns the distinct nodes feeding the given node's inputs, in
// input declaration order.
func (g *Graph) Upstream(id NodeID) []NodeID {
	n, ok := g.Node(id)
	if !ok {
		return nil
	}
	var ups []NodeID
	for _, in := range n.Inputs {
		if src, ok := g.SourceNode(in); ok && !slices.Contains(ups, src) {
			ups = append(ups, src)
		}
	}
	return ups
}

// downstream returns the distinct nodes fed by the given node.
func (g *Graph) downstream(id NodeID) []NodeID {
	n, ok := g.Node(id)
	if !ok {
		return nil
	}
	var downs []NodeID
	for _, out := range n.Outputs {
		for _, to := range g.consumers[out] {
			if in, ok := g.Input(to); ok && !slices.Contains(downs, in.Node) {
				downs = append(downs, in.Node)
			}
		}
	}
	return downs
}

// reaches reports whether target is reachable from start along connections.
func (g *Graph) reaches(start, target NodeID) bool {
	seen := map[NodeID]bool{start: true}
	queue := []NodeID{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == target {
			return true
		}
		for _, next := range g.downstream(cur) {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// =============================================================================
// Sinks
// =============================================================================

// Sinks returns the live nodes with no outgoing connection, in insertion order.
func (g *Graph) Sinks() []NodeID {
	var sinks []NodeID
	for _, id := range g.NodeIDs() {
		if !g.HasOutgoing(id) {
			sinks = append(sinks, id)
		}
	}
	return sinks
}

// Sink returns the evaluation root: the last node marked as designated output
// if any, otherwise the last node without outgoing connections. It returns
// false for an empty graph.
func (g *Graph) Sink() (NodeID, bool) {
	var (
		marked NodeID
		found  bool
	)
	for _, id := range g.NodeIDs() {
		if g.nodes[id].v.Output {
			marked, found = id, true
		}
	}
	if found {
		return marked, true
	}
	sinks := g.Sinks()
	if len(sinks) == 0 {
		return 0, false
	}
	return sinks[len(sinks)-1], true
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks that every connection joins live ports and that the graph
// is acyclic.
func (g *Graph) Validate() error {
	for to, from := range g.conns {
		if _, ok := g.Input(to); !ok {
			return ErrUnknownInput
		}
		if _, ok := g.Output(from); !ok {
			return ErrUnknownOutput
		}
	}
	return g.detectCycles()
}

func (g *Graph) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int, len(g.nodes))
	var hasCycle bool

	var dfs func(id NodeID)
	dfs = func(id NodeID) {
		color[id] = gray
		for _, next := range g.downstream(id) {
			switch color[next] {
			case white:
				dfs(next)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for _, id := range g.NodeIDs() {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// =============================================================================
// Restore
// =============================================================================

// NodeRecord is a fully specified node used to rebuild a graph from storage
// with its original IDs.
type NodeRecord struct {
	Node    Node
	Inputs  []InputPort
	Outputs []OutputPort
}

// Restore inserts a node at its recorded IDs. IDs must not already be
// allocated and port IDs must ascend within the record; gaps left by removed
// nodes become tombstones. Connections are added afterwards with Connect.
func (g *Graph) Restore(rec NodeRecord) error {
	id := rec.Node.ID
	if int(id) < len(g.nodes) {
		return ErrIDInUse
	}
	next := len(g.inputs)
	for _, in := range rec.Inputs {
		if int(in.ID) < next {
			return ErrIDInUse
		}
		next = int(in.ID) + 1
	}
	next = len(g.outputs)
	for _, out := range rec.Outputs {
		if int(out.ID) < next {
			return ErrIDInUse
		}
		next = int(out.ID) + 1
	}

	n := rec.Node
	n.Template = n.Template.Clone()
	n.Inputs = nil
	n.Outputs = nil

	for _, in := range rec.Inputs {
		g.inputs = growTo(g.inputs, int(in.ID))
		in.Node = id
		if in.Value != nil {
			in.Value = in.Value.Ptr()
		}
		g.inputs = append(g.inputs, slot[InputPort]{v: in})
		n.Inputs = append(n.Inputs, in.ID)
	}
	for _, out := range rec.Outputs {
		g.outputs = growTo(g.outputs, int(out.ID))
		out.Node = id
		g.outputs = append(g.outputs, slot[OutputPort]{v: out})
		n.Outputs = append(n.Outputs, out.ID)
	}

	g.nodes = growTo(g.nodes, int(id))
	g.nodes = append(g.nodes, slot[Node]{v: n})
	return nil
}

// growTo pads an arena with tombstones up to length n.
func growTo[T any](s []slot[T], n int) []slot[T] {
	for len(s) < n {
		s = append(s, slot[T]{dead: true})
	}
	return s
}
