// Package importer converts script syntax trees into dataflow graphs.
//
// Import is a recursive descent over an [ast.Node] that yields a transient
// [ParsedNode] tree. It never fails: unknown methods, unsupported constructs
// and malformed literals degrade to omitted subtrees or zero values, so a
// partially supported script still produces a partial graph. Function
// definitions are not materialized; they push a [FunctionSignature] that the
// evaluator later uses to wrap the generated body.
//
// [Materialize] turns the ParsedNode tree into nodes and connections in a
// [dag.Graph].
package importer

import (
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wzrd/pkg/core/ast"
	"github.com/matzehuels/wzrd/pkg/core/template"
)

// ParsedNode is one node of the transient import tree. Children map
// positionally onto the template's input ports.
type ParsedNode struct {
	Template template.Template
	Children []*ParsedNode

	// Literal is the parsed literal for Constant nodes, kept for debugging.
	Literal *template.Value

	// Output marks the node as the designated evaluation root.
	Output bool
}

// Importer walks syntax trees against a template catalog. An Importer
// accumulates function signatures across calls; use a fresh one per script.
type Importer struct {
	cat    *template.Catalog
	sigs   *SignatureStack
	logger *log.Logger
}

// New creates an importer. A nil logger falls back to log.Default().
func New(cat *template.Catalog, logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.Default()
	}
	return &Importer{cat: cat, sigs: &SignatureStack{}, logger: logger}
}

// Signatures returns the stack of function signatures pushed so far.
func (im *Importer) Signatures() *SignatureStack { return im.sigs }

// Import converts n into a ParsedNode tree. It returns nil when n yields
// nothing.
func (im *Importer) Import(n ast.Node) *ParsedNode {
	switch n := n.(type) {
	case *ast.Begin:
		return im.begin(n)
	case *ast.Send:
		return im.send(n)
	case *ast.Int:
		v, err := strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			im.logger.Debug("integer literal defaulted to 0", "literal", n.Value)
			v = 0
		}
		return im.constant(template.Integer(v))
	case *ast.Float:
		v, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			im.logger.Debug("float literal defaulted to 0", "literal", n.Value)
			v = 0
		}
		return im.constant(template.Float(v))
	case *ast.Str:
		return im.constant(template.String(n.Value))
	case *ast.Lvar:
		t := im.cat.Node(template.Variable)
		t.Outputs[0].Name = n.Name
		return &ParsedNode{Template: t}
	case *ast.Def:
		params := make([]string, len(n.Args))
		for i, a := range n.Args {
			params[i] = a.Name
		}
		im.sigs.Push(FunctionSignature{Name: n.Name, Params: params})
		return im.Import(n.Body)
	case *ast.Return:
		out := &ParsedNode{Template: im.cat.Node(template.Output), Output: true}
		if len(n.Args) > 0 {
			out.Children = im.children(n.Args[0])
		}
		return out
	case *ast.If:
		return &ParsedNode{
			Template: im.cat.Node(template.If),
			Children: im.children(n.Cond, n.Then, n.Else),
		}
	case nil:
		return nil
	default:
		im.logger.Debug("skipping unsupported construct", "node", ast.Sexp(n))
		return nil
	}
}

// begin imports every statement but keeps only the first one's result.
func (im *Importer) begin(n *ast.Begin) *ParsedNode {
	var first *ParsedNode
	for i, stmt := range n.Body {
		p := im.Import(stmt)
		if i == 0 {
			first = p
		}
	}
	return first
}

func (im *Importer) send(n *ast.Send) *ParsedNode {
	var recv *ParsedNode
	if n.Receiver != nil {
		recv = im.Import(n.Receiver)
	}
	args := im.children(n.Args...)

	if n.Receiver == nil {
		im.logger.Debug("dropping call without receiver", "method", n.Method)
		return nil
	}
	t, ok := im.cat.Find(n.Method)
	if !ok {
		im.logger.Debug("dropping call to unknown method", "method", n.Method)
		return nil
	}

	p := &ParsedNode{Template: t}
	if recv != nil {
		p.Children = append(p.Children, recv)
	}
	p.Children = append(p.Children, args...)
	return p
}

func (im *Importer) constant(v template.Value) *ParsedNode {
	t := im.cat.Node(template.Constant)
	t.Inputs[0].Default = v.Ptr()
	return &ParsedNode{Template: t, Literal: v.Ptr()}
}

// children imports nodes in order, omitting the ones that yield nothing.
func (im *Importer) children(nodes ...ast.Node) []*ParsedNode {
	var out []*ParsedNode
	for _, n := range nodes {
		if p := im.Import(n); p != nil {
			out = append(out, p)
		}
	}
	return out
}
