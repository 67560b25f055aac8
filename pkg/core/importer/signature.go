package importer

import "slices"

// FunctionSignature is a function name plus its ordered parameter names.
type FunctionSignature struct {
	Name   string   `json:"name" yaml:"name"`
	Params []string `json:"params,omitempty" yaml:"params,omitempty"`
}

// SignatureStack is a last-in-first-out stack of function signatures, pushed
// while importing nested definitions. The zero value is an empty stack.
type SignatureStack struct {
	items []FunctionSignature
}

// NewSignatureStack builds a stack from signatures listed bottom to top.
func NewSignatureStack(sigs ...FunctionSignature) *SignatureStack {
	s := &SignatureStack{}
	for _, sig := range sigs {
		s.Push(sig)
	}
	return s
}

// Push adds a signature on top.
func (s *SignatureStack) Push(sig FunctionSignature) {
	sig.Params = slices.Clone(sig.Params)
	s.items = append(s.items, sig)
}

// Pop removes and returns the top signature.
func (s *SignatureStack) Pop() (FunctionSignature, bool) {
	if s == nil || len(s.items) == 0 {
		return FunctionSignature{}, false
	}
	top := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return top, true
}

// Peek returns the top signature without removing it.
func (s *SignatureStack) Peek() (FunctionSignature, bool) {
	if s == nil || len(s.items) == 0 {
		return FunctionSignature{}, false
	}
	return s.items[len(s.items)-1], true
}

// Len returns the number of signatures on the stack. A nil stack is empty.
func (s *SignatureStack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Clone returns an independent copy. A nil stack clones to an empty one.
func (s *SignatureStack) Clone() *SignatureStack {
	if s == nil {
		return &SignatureStack{}
	}
	return NewSignatureStack(s.items...)
}

// All returns the signatures bottom to top.
func (s *SignatureStack) All() []FunctionSignature {
	if s == nil {
		return nil
	}
	out := make([]FunctionSignature, len(s.items))
	for i, sig := range s.items {
		sig.Params = slices.Clone(sig.Params)
		out[i] = sig
	}
	return out
}
