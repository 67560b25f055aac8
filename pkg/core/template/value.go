package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidValue is returned when decoding a Value that does not carry
// exactly one of the string, integer or float variants.
var ErrInvalidValue = errors.New("value must have exactly one of string, integer, float")

// ValueKind discriminates the variants of a Value.
type ValueKind int

const (
	// ValueString holds text. Rendered wrapped in double quotes.
	ValueString ValueKind = iota
	// ValueInteger holds a signed 64-bit integer.
	ValueInteger
	// ValueFloat holds a 64-bit float.
	ValueFloat
)

// String returns the variant name used in the wire format.
func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueInteger:
		return "integer"
	case ValueFloat:
		return "float"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Value is a literal attached to an input port when no connection feeds it.
// Only the field matching Kind is meaningful.
type Value struct {
	Kind  ValueKind
	Str   string
	Int   int64
	Float float64
}

// String returns a string Value.
func String(s string) Value { return Value{Kind: ValueString, Str: s} }

// Integer returns an integer Value.
func Integer(i int64) Value { return Value{Kind: ValueInteger, Int: i} }

// Float returns a float Value.
func Float(f float64) Value { return Value{Kind: ValueFloat, Float: f} }

// Render returns the text a Value contributes to generated code.
// Strings are wrapped in one pair of double quotes; numbers use their shortest
// exact decimal form (e.g. -5, 1.5, 3).
func (v Value) Render() string {
	switch v.Kind {
	case ValueString:
		return `"` + v.Str + `"`
	case ValueInteger:
		return strconv.FormatInt(v.Int, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	default:
		return ""
	}
}

// Ptr returns a pointer to a copy of v, for use as a Port default.
func (v Value) Ptr() *Value { return &v }

type valueJSON struct {
	String  *string  `json:"string,omitempty" yaml:"string,omitempty"`
	Integer *int64   `json:"integer,omitempty" yaml:"integer,omitempty"`
	Float   *float64 `json:"float,omitempty" yaml:"float,omitempty"`
}

func (v Value) wire() valueJSON {
	switch v.Kind {
	case ValueInteger:
		return valueJSON{Integer: &v.Int}
	case ValueFloat:
		return valueJSON{Float: &v.Float}
	default:
		return valueJSON{String: &v.Str}
	}
}

// MarshalJSON encodes the Value as a single-key object named after its kind.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.wire())
}

// UnmarshalJSON decodes the single-key object produced by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var w valueJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	set := 0
	if w.String != nil {
		*v = String(*w.String)
		set++
	}
	if w.Integer != nil {
		*v = Integer(*w.Integer)
		set++
	}
	if w.Float != nil {
		*v = Float(*w.Float)
		set++
	}
	if set != 1 {
		return ErrInvalidValue
	}
	return nil
}

// MarshalYAML encodes the Value the same way as MarshalJSON.
func (v Value) MarshalYAML() (any, error) {
	return v.wire(), nil
}
