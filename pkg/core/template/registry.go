package template

import "errors"

// ErrEmptyLabel is returned by Registry.CreateNode for an empty label.
var ErrEmptyLabel = errors.New("template label must not be empty")

// Registry is the ordered list of templates offered to node-picker
// collaborators. It is independent of the Catalog: registering a template here
// never changes Catalog lookups used by the importer.
//
// Registry is not safe for concurrent mutation.
type Registry struct {
	templates []Template
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{} }

// NewStdRegistry returns a registry seeded with the standard picker entries:
// Add, Multiply and If.
func NewStdRegistry(c *Catalog) *Registry {
	r := NewRegistry()
	for _, k := range []Kind{Add, Multiply, If} {
		r.templates = append(r.templates, c.Node(k))
	}
	return r
}

// CreateNode appends a custom template and returns a clone of it. Port Order
// values are reassigned from the slice positions.
func (r *Registry) CreateNode(label string, pattern *string, inputs, outputs []Port) (Template, error) {
	if label == "" {
		return Template{}, ErrEmptyLabel
	}
	t := Template{
		Label:   label,
		Inputs:  Ports(inputs...),
		Outputs: Ports(outputs...),
	}
	if pattern != nil {
		p := *pattern
		t.Pattern = &p
	}
	t = t.Clone()
	r.templates = append(r.templates, t)
	return t.Clone(), nil
}

// All returns clones of every registered template in insertion order.
func (r *Registry) All() []Template {
	out := make([]Template, len(r.templates))
	for i, t := range r.templates {
		out[i] = t.Clone()
	}
	return out
}

// Len returns the number of registered templates.
func (r *Registry) Len() int { return len(r.templates) }

// Labels returns the registered labels in insertion order.
func (r *Registry) Labels() []string {
	labels := make([]string, len(r.templates))
	for i, t := range r.templates {
		labels[i] = t.Label
	}
	return labels
}
