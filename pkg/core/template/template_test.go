package template

import (
	"encoding/json"
	"math"
	"testing"
)

func TestValueRender(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"NegativeInteger", Integer(-5), "-5"},
		{"Zero", Integer(0), "0"},
		{"MaxInt", Integer(math.MaxInt64), "9223372036854775807"},
		{"MinInt", Integer(math.MinInt64), "-9223372036854775808"},
		{"Float", Float(1.5), "1.5"},
		{"WholeFloat", Float(3), "3"},
		{"String", String("hi"), `"hi"`},
		{"EmptyString", String(""), `""`},
		{"StringWithQuote", String(`a"b`), `"a"b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.Render(); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValueJSON(t *testing.T) {
	for _, v := range []Value{Integer(-7), Float(2.25), String("x")} {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal %v: %v", v, err)
		}
		var got Value
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if got != v {
			t.Errorf("round trip %s = %+v, want %+v", data, got, v)
		}
	}

	var v Value
	if err := json.Unmarshal([]byte(`{}`), &v); err != ErrInvalidValue {
		t.Errorf("empty object error = %v, want ErrInvalidValue", err)
	}
	if err := json.Unmarshal([]byte(`{"string":"a","integer":1}`), &v); err != ErrInvalidValue {
		t.Errorf("two variants error = %v, want ErrInvalidValue", err)
	}
}

func TestPortTypeCompatible(t *testing.T) {
	if !TypeAny.Compatible(TypeNumber) || !TypeString.Compatible(TypeAny) {
		t.Error("Any should be compatible with everything")
	}
	if TypeNumber.Compatible(TypeString) {
		t.Error("Number should not be compatible with String")
	}
	if !TypeExpression.Compatible(TypeExpression) {
		t.Error("a type should be compatible with itself")
	}
}

func TestPortTypeText(t *testing.T) {
	for typ := range portTypeNames {
		b, _ := typ.MarshalText()
		var got PortType
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", b, err)
		}
		if got != typ {
			t.Errorf("round trip %s = %v, want %v", b, got, typ)
		}
	}
	if _, err := ParsePortType("object"); err == nil {
		t.Error("ParsePortType should reject unknown names")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := Template{
		Label:   "x",
		Pattern: pattern("$0"),
		Inputs:  Ports(Port{Name: "a", Default: Integer(1).Ptr()}),
	}
	c := orig.Clone()
	c.Inputs[0].Default.Int = 99
	c.Inputs[0].Name = "b"
	*c.Pattern = "changed"

	if orig.Inputs[0].Default.Int != 1 || orig.Inputs[0].Name != "a" {
		t.Errorf("clone mutation leaked into original: %+v", orig.Inputs[0])
	}
	if *orig.Pattern != "$0" {
		t.Errorf("pattern leaked: %q", *orig.Pattern)
	}
}
