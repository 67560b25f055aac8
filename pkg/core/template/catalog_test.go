package template

import "testing"

func TestCatalogBuiltins(t *testing.T) {
	c := NewCatalog()

	tests := []struct {
		kind    Kind
		label   string
		pattern string
		inputs  int
		outputs int
	}{
		{Constant, "Constant", "", 1, 1},
		{Add, "+", "($0+$1)", 2, 1},
		{Multiply, "*", "($0*$1)", 2, 1},
		{Output, "output", "", 1, 0},
		{Variable, "Variable", "", 0, 1},
		{If, "If", "if ($0) then\n  $1\nelse\n  $2\nend", 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			n := c.Node(tt.kind)
			if n.Label != tt.label {
				t.Errorf("Label = %q, want %q", n.Label, tt.label)
			}
			gotPattern := ""
			if n.Pattern != nil {
				gotPattern = *n.Pattern
			}
			if gotPattern != tt.pattern {
				t.Errorf("Pattern = %q, want %q", gotPattern, tt.pattern)
			}
			if len(n.Inputs) != tt.inputs || len(n.Outputs) != tt.outputs {
				t.Errorf("ports = %d/%d, want %d/%d", len(n.Inputs), len(n.Outputs), tt.inputs, tt.outputs)
			}
			for i, p := range n.Inputs {
				if p.Order != i+1 {
					t.Errorf("input %d Order = %d, want %d", i, p.Order, i+1)
				}
			}

			found, ok := c.Find(tt.label)
			if !ok || found.Label != tt.label {
				t.Errorf("Find(%q) = %v, %v", tt.label, found.Label, ok)
			}
			if k, ok := c.KindOf(tt.label); !ok || k != tt.kind {
				t.Errorf("KindOf(%q) = %v, %v", tt.label, k, ok)
			}
		})
	}
}

func TestCatalogNodeIsClone(t *testing.T) {
	c := NewCatalog()

	n := c.Node(Constant)
	n.Inputs[0].Default = Integer(42).Ptr()
	n.Outputs[0].Name = "renamed"

	fresh := c.Node(Constant)
	if fresh.Inputs[0].Default != nil {
		t.Errorf("catalog entry gained a default: %+v", fresh.Inputs[0].Default)
	}
	if fresh.Outputs[0].Name != "out" {
		t.Errorf("catalog output renamed to %q", fresh.Outputs[0].Name)
	}

	add, _ := c.Find("+")
	add.Inputs[0].Default.Int = 7
	again, _ := c.Find("+")
	if again.Inputs[0].Default.Int != 0 {
		t.Errorf("Find returned shared default, got %d", again.Inputs[0].Default.Int)
	}
}

func TestCatalogFindUnknown(t *testing.T) {
	c := NewCatalog()
	if _, ok := c.Find("-"); ok {
		t.Error("Find(\"-\") should miss")
	}
	if !c.Is(c.Node(Variable), Variable) {
		t.Error("Is(Variable) = false")
	}
	if c.Is(Template{Label: "custom"}, Variable) {
		t.Error("custom template should not be a built-in")
	}
}

func TestRegistry(t *testing.T) {
	c := NewCatalog()
	r := NewStdRegistry(c)

	if got := r.Labels(); len(got) != 3 || got[0] != "+" || got[1] != "*" || got[2] != "If" {
		t.Fatalf("std labels = %v", got)
	}

	sub := "($0-$1)"
	created, err := r.CreateNode("-", &sub,
		[]Port{{Name: "a", Type: TypeNumber}, {Name: "b", Type: TypeNumber}},
		[]Port{{Name: "out", Type: TypeAny}},
	)
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	if created.Inputs[1].Order != 2 {
		t.Errorf("Order = %d, want 2", created.Inputs[1].Order)
	}
	sub = "mutated"
	if *r.All()[3].Pattern != "($0-$1)" {
		t.Error("registry kept a reference to the caller's pattern")
	}
	if r.Len() != 4 {
		t.Errorf("Len = %d, want 4", r.Len())
	}

	// Registering never affects catalog lookups.
	if _, ok := c.Find("-"); ok {
		t.Error("custom template leaked into the catalog")
	}

	if _, err := r.CreateNode("", nil, nil, nil); err != ErrEmptyLabel {
		t.Errorf("empty label error = %v", err)
	}
}
