// Package eval generates script text from a dataflow graph.
//
// Evaluation starts at the graph's sink and resolves every input port in
// declared order: a connected input takes the text of its source node, an
// unconnected input renders its constant value. A node with a pattern
// substitutes the resolved texts into its $N placeholders; a pattern-less
// node either passes its variable name through or forwards its first input.
//
// Computed texts are memoized per node in a [Cache], so a node feeding
// several consumers is evaluated once and yields identical text on every
// path.
//
// Top-level evaluation never fails. [Evaluate] returns [FallbackGraph] for an
// empty graph and [FallbackNode] when the sink cannot be evaluated.
package eval

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wzrd/pkg/core/dag"
	"github.com/matzehuels/wzrd/pkg/core/importer"
)

// Fallback texts returned by Evaluate.
const (
	FallbackNode  = "error while calling evaluate node"
	FallbackGraph = "Could not evaluate Graph"
)

// ErrMissingInput is returned when a pattern has more distinct placeholders
// than the node has resolved inputs.
var ErrMissingInput = errors.New("placeholder has no resolved input")

var placeholderRe = regexp.MustCompile(`\$\d+`)

// IsFallback reports whether text is one of the fallback texts rather than
// generated code.
func IsFallback(text string) bool {
	return text == FallbackGraph || text == FallbackNode
}

// Cache maps a node to its generated text.
type Cache map[dag.NodeID]string

// Evaluator computes node texts over one graph snapshot. It is not safe for
// concurrent use.
type Evaluator struct {
	g      *dag.Graph
	cache  Cache
	logger *log.Logger
}

// New creates an evaluator. A nil cache starts empty; a nil logger falls back
// to log.Default().
func New(g *dag.Graph, cache Cache, logger *log.Logger) *Evaluator {
	if cache == nil {
		cache = make(Cache)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Evaluator{g: g, cache: cache, logger: logger}
}

// Cache returns the memo table, including entries computed by this evaluator.
func (e *Evaluator) Cache() Cache { return e.cache }

// EvaluateNode returns the generated text for a node. Every computed node is
// stored in the cache.
func (e *Evaluator) EvaluateNode(id dag.NodeID) (string, error) {
	if text, ok := e.cache[id]; ok {
		return text, nil
	}
	n, ok := e.g.Node(id)
	if !ok {
		return "", fmt.Errorf("evaluate node %d: %w", id, dag.ErrUnknownNode)
	}

	inputs := make([]string, 0, len(n.Inputs))
	for _, in := range n.Inputs {
		text, err := e.resolve(in)
		if err != nil {
			return "", err
		}
		inputs = append(inputs, text)
	}

	text, err := e.apply(n, inputs)
	if err != nil {
		return "", err
	}
	e.cache[id] = text
	return text, nil
}

// resolve returns the text flowing into an input port.
func (e *Evaluator) resolve(in dag.InputID) (string, error) {
	if src, ok := e.g.SourceNode(in); ok {
		return e.EvaluateNode(src)
	}
	port, ok := e.g.Input(in)
	if !ok || port.Value == nil {
		return "", nil
	}
	return port.Value.Render(), nil
}

func (e *Evaluator) apply(n *dag.Node, inputs []string) (string, error) {
	if p := n.Template.Pattern; p != nil {
		return Substitute(*p, inputs)
	}
	// Variable nodes: no inputs, the output carries the variable name.
	if len(n.Inputs) == 0 && len(n.Template.Outputs) > 0 {
		return n.Template.Outputs[0].Name, nil
	}
	// Identity nodes pass their first input through.
	if len(inputs) == 0 {
		return "", fmt.Errorf("%w: %q has no inputs", ErrMissingInput, n.Label())
	}
	return inputs[0], nil
}

// Placeholders returns the distinct $N tokens of pattern in order of first
// appearance.
func Placeholders(pattern string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tok := range placeholderRe.FindAllString(pattern, -1) {
		if !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}

// Substitute replaces the k-th distinct placeholder of pattern with
// inputs[k]. Binding follows appearance order, not the digits: "$1 $0" with
// inputs [a b] yields "a b".
func Substitute(pattern string, inputs []string) (string, error) {
	tokens := Placeholders(pattern)
	if len(tokens) > len(inputs) {
		return "", fmt.Errorf("%w: pattern %q has %d placeholders, %d inputs",
			ErrMissingInput, pattern, len(tokens), len(inputs))
	}
	index := make(map[string]int, len(tokens))
	for i, tok := range tokens {
		index[tok] = i
	}
	return placeholderRe.ReplaceAllStringFunc(pattern, func(tok string) string {
		return inputs[index[tok]]
	}), nil
}

// Evaluate generates the text of the whole graph. When sigs is non-empty the
// body is wrapped in the most recent signature; sigs itself is left intact so
// repeated evaluation is stable.
func Evaluate(g *dag.Graph, sigs *importer.SignatureStack, cache Cache, logger *log.Logger) string {
	if logger == nil {
		logger = log.Default()
	}
	sink, ok := g.Sink()
	if !ok {
		return FallbackGraph
	}
	if sinks := g.Sinks(); len(sinks) > 1 {
		logger.Debug("multiple sink candidates", "candidates", sinks, "chosen", sink)
	}

	body, err := New(g, cache, logger).EvaluateNode(sink)
	if err != nil {
		logger.Warn("evaluation failed", "sink", sink, "err", err)
		return FallbackNode
	}

	sig, ok := sigs.Clone().Pop()
	if !ok {
		return body
	}
	return Wrap(sig, body)
}

// Wrap renders body as a function definition. Parentheses are omitted when
// the signature has no parameters.
func Wrap(sig importer.FunctionSignature, body string) string {
	if len(sig.Params) == 0 {
		return fmt.Sprintf("def %s %s end", sig.Name, body)
	}
	return fmt.Sprintf("def %s(%s) %s end", sig.Name, strings.Join(sig.Params, ", "), body)
}
