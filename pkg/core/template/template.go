package template

import (
	"fmt"
	"slices"
)

// PortType is the declared data type of a port.
type PortType int

const (
	TypeNumber PortType = iota
	TypeAny
	TypeString
	TypeExpression
	TypeNone
)

var portTypeNames = map[PortType]string{
	TypeNumber:     "number",
	TypeAny:        "any",
	TypeString:     "string",
	TypeExpression: "expression",
	TypeNone:       "none",
}

// String returns the lowercase type name.
func (t PortType) String() string {
	if s, ok := portTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("PortType(%d)", int(t))
}

// ParsePortType returns the PortType for a name produced by String.
func ParsePortType(s string) (PortType, error) {
	for t, name := range portTypeNames {
		if name == s {
			return t, nil
		}
	}
	return TypeNone, fmt.Errorf("unknown port type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t PortType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *PortType) UnmarshalText(b []byte) error {
	parsed, err := ParsePortType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Compatible reports whether a value of type t may flow into a port of type
// other. Any is compatible with every type, in both directions.
func (t PortType) Compatible(other PortType) bool {
	return t == TypeAny || other == TypeAny || t == other
}

// Port is a named, typed slot on a template. Order is the 1-based position
// among its siblings and determines placeholder mapping.
type Port struct {
	Name    string   `json:"name" yaml:"name"`
	Type    PortType `json:"type" yaml:"type"`
	Default *Value   `json:"default,omitempty" yaml:"default,omitempty"`
	Order   int      `json:"order" yaml:"order"`
}

// Template is a reusable node blueprint. Label is the lookup key; Pattern is
// the optional code text with $N placeholders.
type Template struct {
	Label   string  `json:"label" yaml:"label"`
	Pattern *string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Inputs  []Port  `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs []Port  `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// HasPattern reports whether the template carries a code pattern.
func (t Template) HasPattern() bool { return t.Pattern != nil }

// Clone returns a deep copy. Port slices, defaults and the pattern are never
// shared with the receiver.
func (t Template) Clone() Template {
	out := Template{Label: t.Label}
	if t.Pattern != nil {
		p := *t.Pattern
		out.Pattern = &p
	}
	out.Inputs = clonePorts(t.Inputs)
	out.Outputs = clonePorts(t.Outputs)
	return out
}

func clonePorts(ports []Port) []Port {
	if ports == nil {
		return nil
	}
	out := slices.Clone(ports)
	for i := range out {
		if out[i].Default != nil {
			out[i].Default = out[i].Default.Ptr()
		}
	}
	return out
}

// Ports builds an ordered port list, assigning Order 1..n.
func Ports(specs ...Port) []Port {
	out := make([]Port, len(specs))
	for i, p := range specs {
		p.Order = i + 1
		out[i] = p
	}
	return out
}

func pattern(s string) *string { return &s }
