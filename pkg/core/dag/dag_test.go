package dag

import (
	"errors"
	"testing"

	"github.com/matzehuels/wzrd/pkg/core/template"
)

func chain(t *testing.T) (*Graph, []NodeID) {
	t.Helper()
	c := template.NewCatalog()
	g := New()
	a := g.AddNode(c.Node(template.Constant))
	b := g.AddNode(c.Node(template.Add))
	out := g.AddNode(c.Node(template.Output))
	if err := g.Connect(g.MustNode(a).Outputs[0], g.MustNode(b).Inputs[0]); err != nil {
		t.Fatalf("Connect a->b: %v", err)
	}
	if err := g.Connect(g.MustNode(b).Outputs[0], g.MustNode(out).Inputs[0]); err != nil {
		t.Fatalf("Connect b->out: %v", err)
	}
	return g, []NodeID{a, b, out}
}

func TestAddNode(t *testing.T) {
	c := template.NewCatalog()
	g := New()
	id := g.AddNode(c.Node(template.Add))

	n, ok := g.Node(id)
	if !ok {
		t.Fatal("node not found")
	}
	if n.Label() != "+" {
		t.Errorf("Label = %q, want +", n.Label())
	}
	if len(n.Inputs) != 2 || len(n.Outputs) != 1 {
		t.Fatalf("ports = %d/%d, want 2/1", len(n.Inputs), len(n.Outputs))
	}
	in, _ := g.Input(n.Inputs[1])
	if in.Name != "value2" || in.Node != id {
		t.Errorf("input = %+v", in)
	}
	if in.Value == nil || in.Value.Int != 0 {
		t.Errorf("input default = %v, want Integer(0)", in.Value)
	}

	in.Value.Int = 5
	other := g.AddNode(c.Node(template.Add))
	in2, _ := g.Input(g.MustNode(other).Inputs[1])
	if in2.Value.Int != 0 {
		t.Error("port values are shared between nodes")
	}
}

func TestConnect(t *testing.T) {
	tests := []struct {
		name    string
		connect func(g *Graph, ids []NodeID) error
		wantErr error
	}{
		{
			name: "InputOccupied",
			connect: func(g *Graph, ids []NodeID) error {
				return g.Connect(g.MustNode(ids[0]).Outputs[0], g.MustNode(ids[2]).Inputs[0])
			},
			wantErr: ErrInputOccupied,
		},
		{
			name: "Cycle",
			connect: func(g *Graph, ids []NodeID) error {
				return g.Connect(g.MustNode(ids[1]).Outputs[0], g.MustNode(ids[0]).Inputs[0])
			},
			wantErr: ErrGraphHasCycle,
		},
		{
			name: "SelfLoop",
			connect: func(g *Graph, ids []NodeID) error {
				return g.Connect(g.MustNode(ids[1]).Outputs[0], g.MustNode(ids[1]).Inputs[1])
			},
			wantErr: ErrGraphHasCycle,
		},
		{
			name: "UnknownOutput",
			connect: func(g *Graph, ids []NodeID) error {
				return g.Connect(OutputID(99), g.MustNode(ids[1]).Inputs[1])
			},
			wantErr: ErrUnknownOutput,
		},
		{
			name: "FanOut",
			connect: func(g *Graph, ids []NodeID) error {
				return g.Connect(g.MustNode(ids[0]).Outputs[0], g.MustNode(ids[1]).Inputs[1])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, ids := chain(t)
			err := tt.connect(g, ids)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Connect error = %v, want %v", err, tt.wantErr)
			}
			if err := g.Validate(); err != nil {
				t.Errorf("Validate = %v", err)
			}
		})
	}
}

func TestConnectionsAndUpstream(t *testing.T) {
	g, ids := chain(t)
	a, b := g.MustNode(ids[0]), g.MustNode(ids[1])
	if err := g.Connect(a.Outputs[0], b.Inputs[1]); err != nil {
		t.Fatal(err)
	}

	conns := g.Connections()
	if len(conns) != 3 {
		t.Fatalf("Connections = %d, want 3", len(conns))
	}
	for i := 1; i < len(conns); i++ {
		if conns[i-1].To >= conns[i].To {
			t.Errorf("connections not ordered: %v", conns)
		}
	}

	if got := g.Consumers(a.Outputs[0]); len(got) != 2 {
		t.Errorf("Consumers = %v, want 2 entries", got)
	}
	if ups := g.Upstream(ids[1]); len(ups) != 1 || ups[0] != ids[0] {
		t.Errorf("Upstream = %v, want [%d]", ups, ids[0])
	}
	if src, ok := g.SourceNode(b.Inputs[0]); !ok || src != ids[0] {
		t.Errorf("SourceNode = %v, %v", src, ok)
	}

	if !g.Disconnect(b.Inputs[1]) {
		t.Error("Disconnect reported no connection")
	}
	if g.Disconnect(b.Inputs[1]) {
		t.Error("second Disconnect should report false")
	}
}

func TestSink(t *testing.T) {
	c := template.NewCatalog()

	t.Run("Empty", func(t *testing.T) {
		if _, ok := New().Sink(); ok {
			t.Error("empty graph has a sink")
		}
	})

	t.Run("LastZeroOutgoing", func(t *testing.T) {
		g := New()
		x := g.AddNode(c.Node(template.Constant))
		y := g.AddNode(c.Node(template.Constant))
		if got, _ := g.Sink(); got != y {
			t.Errorf("Sink = %d, want %d", got, y)
		}
		if sinks := g.Sinks(); len(sinks) != 2 || sinks[0] != x {
			t.Errorf("Sinks = %v", sinks)
		}
	})

	t.Run("MarkerWins", func(t *testing.T) {
		g, ids := chain(t)
		g.AddNode(c.Node(template.Constant))
		if got, _ := g.Sink(); got != ids[2]+1 {
			t.Fatalf("unmarked Sink = %d", got)
		}
		if err := g.SetOutput(ids[2], true); err != nil {
			t.Fatal(err)
		}
		if got, _ := g.Sink(); got != ids[2] {
			t.Errorf("Sink = %d, want marked %d", got, ids[2])
		}
	})
}

func TestConsumersFollowEdits(t *testing.T) {
	c := template.NewCatalog()
	g := New()
	src := g.AddNode(c.Node(template.Constant))
	add := g.AddNode(c.Node(template.Add))
	out := g.MustNode(src).Outputs[0]
	ins := g.MustNode(add).Inputs

	for _, in := range []InputID{ins[1], ins[0]} {
		if err := g.Connect(out, in); err != nil {
			t.Fatal(err)
		}
	}
	if got := g.Consumers(out); len(got) != 2 || got[0] != ins[0] {
		t.Errorf("Consumers = %v, want %v", got, ins)
	}

	g.Disconnect(ins[0])
	if got := g.Consumers(out); len(got) != 1 || got[0] != ins[1] {
		t.Errorf("Consumers after Disconnect = %v", got)
	}
	if !g.HasOutgoing(src) {
		t.Error("fan-out source should still have an outgoing connection")
	}

	g.Disconnect(ins[1])
	if g.HasOutgoing(src) || g.Consumers(out) != nil {
		t.Error("source should be a sink again")
	}
	if sink, _ := g.Sink(); sink != add {
		t.Errorf("Sink = %d, want last zero-outgoing node %d", sink, add)
	}
}

// TestLongChain builds a graph the size of the largest accepted script. Sink
// queries and cycle checks must stay proportional to node degree.
func TestLongChain(t *testing.T) {
	if testing.Short() {
		t.Skip("long chain")
	}
	const n = 60000
	c := template.NewCatalog()
	g := New()
	prev := g.AddNode(c.Node(template.Constant))
	for i := 1; i < n; i++ {
		next := g.AddNode(c.Node(template.Add))
		if err := g.Connect(g.MustNode(prev).Outputs[0], g.MustNode(next).Inputs[0]); err != nil {
			t.Fatalf("Connect %d: %v", i, err)
		}
		prev = next
	}

	sinks := g.Sinks()
	if len(sinks) != 1 || sinks[0] != prev {
		t.Fatalf("Sinks = %d candidates, want only the chain end", len(sinks))
	}
	if err := g.Connect(g.MustNode(prev).Outputs[0], g.MustNode(NodeID(1)).Inputs[1]); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("closing the chain = %v, want ErrGraphHasCycle", err)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate = %v", err)
	}
}

func TestRemoveNode(t *testing.T) {
	g, ids := chain(t)
	if err := g.RemoveNode(ids[1]); err != nil {
		t.Fatal(err)
	}
	if _, ok := g.Node(ids[1]); ok {
		t.Error("removed node is still live")
	}
	if g.ConnectionCount() != 0 {
		t.Errorf("ConnectionCount = %d, want 0", g.ConnectionCount())
	}
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount = %d, want 2", g.NodeCount())
	}
	if g.HasOutgoing(ids[0]) || len(g.Consumers(g.MustNode(ids[0]).Outputs[0])) != 0 {
		t.Error("removing a consumer should leave its source without outgoing connections")
	}
	if sinks := g.Sinks(); len(sinks) != 2 {
		t.Errorf("Sinks = %v, want both survivors", sinks)
	}

	next := g.AddNode(template.NewCatalog().Node(template.Constant))
	if next == ids[1] {
		t.Error("removed ID was reused")
	}
	if err := g.RemoveNode(ids[1]); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("second RemoveNode = %v", err)
	}
}

func TestRestore(t *testing.T) {
	src, ids := chain(t)
	if err := src.RemoveNode(ids[0]); err != nil {
		t.Fatal(err)
	}

	dst := New()
	for _, id := range src.NodeIDs() {
		n := src.MustNode(id)
		rec := NodeRecord{Node: *n}
		for _, in := range n.Inputs {
			p, _ := src.Input(in)
			rec.Inputs = append(rec.Inputs, *p)
		}
		for _, out := range n.Outputs {
			p, _ := src.Output(out)
			rec.Outputs = append(rec.Outputs, *p)
		}
		if err := dst.Restore(rec); err != nil {
			t.Fatalf("Restore %d: %v", id, err)
		}
	}
	for _, c := range src.Connections() {
		if err := dst.Connect(c.From, c.To); err != nil {
			t.Fatalf("Connect %v: %v", c, err)
		}
	}

	if _, ok := dst.Node(ids[0]); ok {
		t.Error("tombstoned ID came back live")
	}
	if got, want := dst.Connections(), src.Connections(); len(got) != len(want) || got[0] != want[0] {
		t.Errorf("Connections = %v, want %v", got, want)
	}

	rec := NodeRecord{Node: Node{ID: ids[1]}}
	if err := dst.Restore(rec); !errors.Is(err, ErrIDInUse) {
		t.Errorf("duplicate Restore = %v, want ErrIDInUse", err)
	}
}
