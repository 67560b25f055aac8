package template

import "fmt"

// Kind enumerates the built-in templates.
type Kind int

const (
	Constant Kind = iota
	Add
	Multiply
	Output
	Variable
	If
)

// Kinds lists every built-in kind in declaration order.
var Kinds = []Kind{Constant, Add, Multiply, Output, Variable, If}

// String returns the Go-side name of the kind (not the template label).
func (k Kind) String() string {
	switch k {
	case Constant:
		return "Constant"
	case Add:
		return "Add"
	case Multiply:
		return "Multiply"
	case Output:
		return "Output"
	case Variable:
		return "Variable"
	case If:
		return "If"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Catalog is the immutable table of built-in templates, indexed by kind and by
// label. The zero value is empty; use NewCatalog.
//
// A Catalog is safe for concurrent use: it is never mutated after NewCatalog
// returns, and every accessor hands out clones.
type Catalog struct {
	byKind  map[Kind]Template
	byLabel map[string]Template
	labels  map[string]Kind
}

// NewCatalog builds the built-in template table.
func NewCatalog() *Catalog {
	c := &Catalog{
		byKind:  make(map[Kind]Template, len(Kinds)),
		byLabel: make(map[string]Template, len(Kinds)),
		labels:  make(map[string]Kind, len(Kinds)),
	}
	for _, k := range Kinds {
		t := builtin(k)
		c.byKind[k] = t
		c.byLabel[t.Label] = t
		c.labels[t.Label] = k
	}
	return c
}

// Node returns an independent clone of the built-in template for kind.
// It panics on an unknown kind, which is a programming error.
func (c *Catalog) Node(kind Kind) Template {
	t, ok := c.byKind[kind]
	if !ok {
		panic(fmt.Sprintf("template: unknown kind %v", kind))
	}
	return t.Clone()
}

// Find returns a clone of the built-in template with the given label.
func (c *Catalog) Find(label string) (Template, bool) {
	t, ok := c.byLabel[label]
	if !ok {
		return Template{}, false
	}
	return t.Clone(), true
}

// KindOf returns the built-in kind whose label is label.
func (c *Catalog) KindOf(label string) (Kind, bool) {
	k, ok := c.labels[label]
	return k, ok
}

// Is reports whether t was instantiated from the built-in of the given kind.
func (c *Catalog) Is(t Template, kind Kind) bool {
	k, ok := c.labels[t.Label]
	return ok && k == kind
}

// All returns clones of every built-in template in Kinds order.
func (c *Catalog) All() []Template {
	out := make([]Template, 0, len(Kinds))
	for _, k := range Kinds {
		out = append(out, c.Node(k))
	}
	return out
}

func builtin(k Kind) Template {
	number := func(name string) Port { return Port{Name: name, Type: TypeNumber, Default: Integer(0).Ptr()} }
	out := Ports(Port{Name: "out", Type: TypeAny})

	switch k {
	case Constant:
		return Template{
			Label:   "Constant",
			Inputs:  Ports(Port{Name: "value", Type: TypeAny}),
			Outputs: out,
		}
	case Add:
		return Template{
			Label:   "+",
			Pattern: pattern("($0+$1)"),
			Inputs:  Ports(number("value1"), number("value2")),
			Outputs: out,
		}
	case Multiply:
		return Template{
			Label:   "*",
			Pattern: pattern("($0*$1)"),
			Inputs:  Ports(number("value1"), number("value2")),
			Outputs: out,
		}
	case Output:
		// Pattern-less: the body of a function is its last expression, so the
		// output node passes its input through unchanged.
		return Template{
			Label:  "output",
			Inputs: Ports(Port{Name: "value", Type: TypeAny}),
		}
	case Variable:
		return Template{
			Label:   "Variable",
			Outputs: out,
		}
	case If:
		return Template{
			Label:   "If",
			Pattern: pattern("if ($0) then\n  $1\nelse\n  $2\nend"),
			Inputs: Ports(
				Port{Name: "condition", Type: TypeExpression, Default: String("").Ptr()},
				Port{Name: "then", Type: TypeAny},
				Port{Name: "else", Type: TypeAny},
			),
			Outputs: out,
		}
	}
	panic(fmt.Sprintf("template: unknown kind %v", k))
}
