package importer

import (
	"testing"

	"github.com/matzehuels/wzrd/pkg/core/ast"
	"github.com/matzehuels/wzrd/pkg/core/dag"
	"github.com/matzehuels/wzrd/pkg/core/template"
)

func newImporter() *Importer { return New(template.NewCatalog(), nil) }

func TestImportLiterals(t *testing.T) {
	tests := []struct {
		name string
		node ast.Node
		want template.Value
	}{
		{"Int", &ast.Int{Value: "42"}, template.Integer(42)},
		{"NegativeInt", &ast.Int{Value: "-5"}, template.Integer(-5)},
		{"MalformedInt", &ast.Int{Value: "12abc"}, template.Integer(0)},
		{"OverflowInt", &ast.Int{Value: "99999999999999999999"}, template.Integer(0)},
		{"Float", &ast.Float{Value: "2.5"}, template.Float(2.5)},
		{"MalformedFloat", &ast.Float{Value: "2.5.1"}, template.Float(0)},
		{"Str", &ast.Str{Value: "hi"}, template.String("hi")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newImporter().Import(tt.node)
			if p == nil {
				t.Fatal("Import returned nil")
			}
			if p.Template.Label != "Constant" {
				t.Errorf("Label = %q, want Constant", p.Template.Label)
			}
			if got := p.Template.Inputs[0].Default; got == nil || *got != tt.want {
				t.Errorf("default = %v, want %v", got, tt.want)
			}
			if p.Literal == nil || *p.Literal != tt.want {
				t.Errorf("Literal = %v, want %v", p.Literal, tt.want)
			}
		})
	}
}

func TestImportSend(t *testing.T) {
	im := newImporter()
	p := im.Import(&ast.Send{
		Receiver: &ast.Int{Value: "1"},
		Method:   "+",
		Args:     []ast.Node{&ast.Lvar{Name: "x"}},
	})
	if p == nil || p.Template.Label != "+" {
		t.Fatalf("Import = %+v, want + node", p)
	}
	if len(p.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(p.Children))
	}
	if p.Children[0].Template.Label != "Constant" {
		t.Errorf("first child = %q, want receiver Constant", p.Children[0].Template.Label)
	}
	if got := p.Children[1].Template.Outputs[0].Name; got != "x" {
		t.Errorf("variable output = %q, want x", got)
	}

	tests := []struct {
		name string
		node ast.Node
	}{
		{"UnknownMethod", &ast.Send{Receiver: &ast.Int{Value: "1"}, Method: "-", Args: []ast.Node{&ast.Int{Value: "2"}}}},
		{"NoReceiver", &ast.Send{Method: "+", Args: []ast.Node{&ast.Int{Value: "2"}}}},
		{"Nil", &ast.Nil{}},
		{"NilInterface", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if p := newImporter().Import(tt.node); p != nil {
				t.Errorf("Import = %+v, want nil", p)
			}
		})
	}
}

func TestImportBeginKeepsFirst(t *testing.T) {
	im := newImporter()
	p := im.Import(&ast.Begin{Body: []ast.Node{
		&ast.Int{Value: "7"},
		&ast.Def{Name: "later", Body: &ast.Int{Value: "8"}},
	}})
	if p == nil || p.Literal == nil || p.Literal.Int != 7 {
		t.Fatalf("Import = %+v, want constant 7", p)
	}
	if im.Signatures().Len() != 1 {
		t.Errorf("later statements must still be imported, stack Len = %d", im.Signatures().Len())
	}
}

func TestImportDefAndReturn(t *testing.T) {
	im := newImporter()
	p := im.Import(&ast.Def{
		Name: "outer",
		Args: []ast.Arg{{Name: "a"}, {Name: "b"}},
		Body: &ast.Begin{Body: []ast.Node{
			&ast.Return{Args: []ast.Node{&ast.Lvar{Name: "a"}, &ast.Lvar{Name: "b"}}},
		}},
	})
	if p == nil || p.Template.Label != "output" || !p.Output {
		t.Fatalf("Import = %+v, want output node", p)
	}
	if len(p.Children) != 1 || p.Children[0].Template.Outputs[0].Name != "a" {
		t.Errorf("return should wrap only its first expression, got %d children", len(p.Children))
	}

	sig, ok := im.Signatures().Peek()
	if !ok || sig.Name != "outer" || len(sig.Params) != 2 {
		t.Errorf("signature = %+v, %v", sig, ok)
	}

	empty := newImporter().Import(&ast.Return{})
	if empty == nil || len(empty.Children) != 0 {
		t.Errorf("bare return = %+v, want childless output node", empty)
	}
}

func TestImportIf(t *testing.T) {
	p := newImporter().Import(&ast.If{
		Cond: &ast.Lvar{Name: "c"},
		Then: &ast.Int{Value: "1"},
		Else: &ast.Int{Value: "2"},
	})
	if p == nil || p.Template.Label != "If" || len(p.Children) != 3 {
		t.Fatalf("Import = %+v, want If with 3 children", p)
	}
}

func TestSignatureStack(t *testing.T) {
	s := NewSignatureStack(FunctionSignature{Name: "a"}, FunctionSignature{Name: "b", Params: []string{"x"}})
	clone := s.Clone()

	top, ok := s.Pop()
	if !ok || top.Name != "b" {
		t.Errorf("Pop = %+v, want b", top)
	}
	if clone.Len() != 2 {
		t.Errorf("clone Len = %d after popping original", clone.Len())
	}

	all := clone.All()
	all[1].Params[0] = "mutated"
	if again, _ := clone.Peek(); again.Params[0] != "x" {
		t.Error("All leaked internal params")
	}

	var nilStack *SignatureStack
	if nilStack.Len() != 0 || nilStack.Clone().Len() != 0 {
		t.Error("nil stack should behave as empty")
	}
	if _, ok := nilStack.Pop(); ok {
		t.Error("Pop on nil stack should report false")
	}
}

func TestMaterialize(t *testing.T) {
	im := newImporter()
	root := im.Import(&ast.Send{
		Receiver: &ast.Int{Value: "48"},
		Method:   "*",
		Args: []ast.Node{&ast.Send{
			Receiver: &ast.Int{Value: "11"},
			Method:   "+",
			Args:     []ast.Node{&ast.Int{Value: "20"}},
		}},
	})

	g := dag.New()
	order := Materialize(g, root, nil)
	if len(order) != 5 {
		t.Fatalf("order = %v, want 5 nodes", order)
	}
	if g.MustNode(order[len(order)-1]).Label() != "*" {
		t.Errorf("root must be created last, got %q", g.MustNode(order[len(order)-1]).Label())
	}
	if g.ConnectionCount() != 4 {
		t.Errorf("ConnectionCount = %d, want 4", g.ConnectionCount())
	}
	if sink, _ := g.Sink(); sink != order[len(order)-1] {
		t.Errorf("Sink = %d, want root", sink)
	}

	rootNode := g.MustNode(order[len(order)-1])
	if rootNode.Position != DefaultPlacer(0, 0) {
		t.Errorf("root position = %v", rootNode.Position)
	}
	lit, _ := g.Input(g.MustNode(order[0]).Inputs[0])
	if lit.Value == nil || lit.Value.Int != 48 {
		t.Errorf("first constant value = %v, want 48", lit.Value)
	}
}

func TestMaterializeDanglingInput(t *testing.T) {
	im := newImporter()
	// An output node has no output ports, so wiring it as a child leaves the
	// parent's input unconnected.
	root := &ParsedNode{
		Template: template.NewCatalog().Node(template.Add),
		Children: []*ParsedNode{im.Import(&ast.Return{})},
	}
	g := dag.New()
	order := Materialize(g, root, nil)
	if len(order) != 2 || g.ConnectionCount() != 0 {
		t.Errorf("order = %v, connections = %d; want 2 nodes, 0 connections", order, g.ConnectionCount())
	}
	if got := Materialize(g, nil, nil); got != nil {
		t.Errorf("Materialize(nil) = %v", got)
	}
}
