// Package ast defines the script syntax tree consumed by the importer.
//
// The node set mirrors the shapes a script parser emits for the supported
// subset: blocks, method calls, literals, local variables, function
// definitions, return and conditionals. Literal values are kept as source
// text so that malformed literals reach the importer, which decides how to
// degrade them.
package ast

import (
	"fmt"
	"strings"
)

// Node is any syntax tree node.
type Node interface {
	node()
}

// Begin is a statement sequence.
type Begin struct {
	Body []Node
}

// Send is a method call. Binary operators are sends with the left operand as
// Receiver and the right operand as the single argument. Receiver is nil for
// receiver-less calls.
type Send struct {
	Receiver Node
	Method   string
	Args     []Node
}

// Int is an integer literal.
type Int struct {
	Value string
}

// Float is a floating point literal.
type Float struct {
	Value string
}

// Str is a string literal, unquoted.
type Str struct {
	Value string
}

// Lvar is a local variable reference.
type Lvar struct {
	Name string
}

// Arg is a positional parameter of a Def.
type Arg struct {
	Name string
}

// Def is a function definition.
type Def struct {
	Name string
	Args []Arg
	Body Node
}

// Return returns zero or more expressions.
type Return struct {
	Args []Node
}

// If is a conditional expression. Else may be nil.
type If struct {
	Cond Node
	Then Node
	Else Node
}

// Nil is the nil literal.
type Nil struct{}

func (*Begin) node()  {}
func (*Send) node()   {}
func (*Int) node()    {}
func (*Float) node()  {}
func (*Str) node()    {}
func (*Lvar) node()   {}
func (*Arg) node()    {}
func (*Def) node()    {}
func (*Return) node() {}
func (*If) node()     {}
func (*Nil) node()    {}

// Sexp renders n as an s-expression, e.g. (send (int 48) :* (lvar :a)).
// A nil node renders as "nil".
func Sexp(n Node) string {
	var b strings.Builder
	writeSexp(&b, n)
	return b.String()
}

func writeSexp(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case nil:
		b.WriteString("nil")
	case *Begin:
		b.WriteString("(begin")
		for _, s := range n.Body {
			b.WriteByte(' ')
			writeSexp(b, s)
		}
		b.WriteByte(')')
	case *Send:
		b.WriteString("(send ")
		writeSexp(b, n.Receiver)
		fmt.Fprintf(b, " :%s", n.Method)
		for _, a := range n.Args {
			b.WriteByte(' ')
			writeSexp(b, a)
		}
		b.WriteByte(')')
	case *Int:
		fmt.Fprintf(b, "(int %s)", n.Value)
	case *Float:
		fmt.Fprintf(b, "(float %s)", n.Value)
	case *Str:
		fmt.Fprintf(b, "(str %q)", n.Value)
	case *Lvar:
		fmt.Fprintf(b, "(lvar :%s)", n.Name)
	case *Arg:
		fmt.Fprintf(b, "(arg :%s)", n.Name)
	case *Def:
		fmt.Fprintf(b, "(def :%s (args", n.Name)
		for _, a := range n.Args {
			fmt.Fprintf(b, " (arg :%s)", a.Name)
		}
		b.WriteString(") ")
		writeSexp(b, n.Body)
		b.WriteByte(')')
	case *Return:
		b.WriteString("(return")
		for _, a := range n.Args {
			b.WriteByte(' ')
			writeSexp(b, a)
		}
		b.WriteByte(')')
	case *If:
		b.WriteString("(if ")
		writeSexp(b, n.Cond)
		b.WriteByte(' ')
		writeSexp(b, n.Then)
		b.WriteByte(' ')
		writeSexp(b, n.Else)
		b.WriteByte(')')
	case *Nil:
		b.WriteString("(nil)")
	default:
		fmt.Fprintf(b, "(%T)", n)
	}
}
