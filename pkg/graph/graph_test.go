package graph

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/wzrd/pkg/core/dag"
	"github.com/matzehuels/wzrd/pkg/core/eval"
	"github.com/matzehuels/wzrd/pkg/core/importer"
	"github.com/matzehuels/wzrd/pkg/core/layout"
	"github.com/matzehuels/wzrd/pkg/core/template"
	"github.com/matzehuels/wzrd/pkg/script"
)

func imported(t *testing.T, src string) (*dag.Graph, *importer.SignatureStack) {
	t.Helper()
	tree, err := script.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	im := importer.New(template.NewCatalog(), nil)
	g := dag.New()
	importer.Materialize(g, im.Import(tree), nil)
	return g, im.Signatures()
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"Arithmetic", "(48*(11+20))"},
		{"Function", "def main(a) return (48*(11+a)) end"},
		{"Literals", `def f() return (1.5 + "s") * -3 end`},
		{"Conditional", "if c then 1 else 2 end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, sigs := imported(t, tt.src)
			want := eval.Evaluate(g, sigs, nil, nil)

			data, err := MarshalGraph(g, sigs)
			if err != nil {
				t.Fatalf("MarshalGraph: %v", err)
			}
			g2, sigs2, err := LoadGraph(data)
			if err != nil {
				t.Fatalf("LoadGraph: %v", err)
			}

			if got := eval.Evaluate(g2, sigs2, make(eval.Cache), nil); got != want {
				t.Errorf("evaluate after round trip = %q, want %q", got, want)
			}
			if g2.NodeCount() != g.NodeCount() || g2.ConnectionCount() != g.ConnectionCount() {
				t.Errorf("counts = %d/%d, want %d/%d",
					g2.NodeCount(), g2.ConnectionCount(), g.NodeCount(), g.ConnectionCount())
			}

			again, err := MarshalGraph(g2, sigs2)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(again, data) {
				t.Errorf("second encoding differs:\n%s\n---\n%s", data, again)
			}
		})
	}
}

func TestRoundTripPreservesEdits(t *testing.T) {
	g, sigs := imported(t, "1 + 2")
	ids := g.NodeIDs()
	if err := g.RemoveNode(ids[0]); err != nil {
		t.Fatal(err)
	}
	_ = g.SetPosition(ids[1], dag.Point{X: 12.5, Y: -3})
	_ = g.SetValue(g.MustNode(ids[1]).Inputs[0], template.String("edited").Ptr())

	g2, _, err := ToDAG(FromDAG(g, sigs))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := g2.Node(ids[0]); ok {
		t.Error("removed node came back")
	}
	n := g2.MustNode(ids[1])
	if n.Position != (dag.Point{X: 12.5, Y: -3}) {
		t.Errorf("position = %v", n.Position)
	}
	in, _ := g2.Input(n.Inputs[0])
	if in.Value == nil || *in.Value != template.String("edited") {
		t.Errorf("value = %v", in.Value)
	}
	if next := g2.AddNode(template.NewCatalog().Node(template.Constant)); next <= ids[len(ids)-1] {
		t.Errorf("new ID %d collides with restored IDs", next)
	}
}

func TestToDAGErrors(t *testing.T) {
	g, sigs := imported(t, "1 + 2")
	doc := FromDAG(g, sigs)

	tests := []struct {
		name    string
		mutate  func(d *Document)
		wantErr error
	}{
		{
			name:    "FutureVersion",
			mutate:  func(d *Document) { d.Version = Version + 1 },
			wantErr: ErrUnsupportedVersion,
		},
		{
			name:    "DuplicateNode",
			mutate:  func(d *Document) { d.Nodes = append(d.Nodes, d.Nodes[0]) },
			wantErr: dag.ErrIDInUse,
		},
		{
			name: "DoubleConnection",
			mutate: func(d *Document) {
				c := d.Connections[0]
				c.From = d.Nodes[1].Outputs[0].ID
				d.Connections = append(d.Connections, c)
			},
			wantErr: dag.ErrInputOccupied,
		},
		{
			name:    "DanglingConnection",
			mutate:  func(d *Document) { d.Connections = append(d.Connections, dag.Connection{From: 99, To: 0}) },
			wantErr: dag.ErrUnknownOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := FromDAG(g, sigs)
			d.Nodes = append([]Node(nil), doc.Nodes...)
			d.Connections = append([]dag.Connection(nil), doc.Connections...)
			tt.mutate(&d)
			if _, _, err := ToDAG(d); !errors.Is(err, tt.wantErr) {
				t.Errorf("ToDAG error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGraphFile(t *testing.T) {
	g, sigs := imported(t, "def main(a) return a * 2 end")
	path := filepath.Join(t.TempDir(), "graph.json")

	if err := WriteGraphFile(g, sigs, path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	doc, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if len(doc.Signatures) != 1 || doc.Signatures[0].Name != "main" {
		t.Errorf("signatures = %+v", doc.Signatures)
	}

	if _, err := ReadGraphFile(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}
	if _, err := ReadGraph(strings.NewReader("{")); err == nil {
		t.Error("ReadGraph should fail on truncated JSON")
	}
}

func TestMarshalYAML(t *testing.T) {
	g, sigs := imported(t, `def f(x) return x + "a" end`)
	data, err := MarshalYAML(g, sigs)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"version: 1", "label: output", "type: number", "string: a", "name: f"} {
		if !strings.Contains(out, want) {
			t.Errorf("YAML missing %q:\n%s", want, out)
		}
	}
}

func TestLayoutSerialization(t *testing.T) {
	g, _ := imported(t, "1 + 2")
	res, ok := layout.Compute(g, nil, layout.DefaultOptions())
	if !ok {
		t.Fatal("no layout")
	}
	l := FromLayout(res)
	if sink, _ := g.Sink(); l.Sink != sink || l.Positions[0].ID != sink {
		t.Errorf("sink = %d, first = %d", l.Sink, l.Positions[0].ID)
	}

	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatal(err)
	}
	back, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatal(err)
	}
	back.Apply(g)
	for _, p := range back.Sorted() {
		if got := g.MustNode(p.ID).Position; got != (dag.Point{X: p.X, Y: p.Y}) {
			t.Errorf("node %d at %v, want %v", p.ID, got, p)
		}
	}
}
