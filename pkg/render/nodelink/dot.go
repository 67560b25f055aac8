package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/wzrd/pkg/core/dag"
	"github.com/matzehuels/wzrd/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed shows literal input values next to the port names.
	Detailed bool

	// Pinned fixes nodes at their graph positions instead of letting
	// Graphviz rank them.
	Pinned bool
}

// Engine returns the Graphviz layout engine the options require.
func (o Options) Engine() graphviz.Layout {
	if o.Pinned {
		return graphviz.NEATO
	}
	return graphviz.DOT
}

// ToDOT converts a graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// The designated output node is drawn with a highlighted fill.
func ToDOT(g *dag.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=record, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14];\n")
	buf.WriteString("  edge [arrowsize=0.7];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	if opts.Pinned {
		buf.WriteString("  splines=true;\n")
	}
	buf.WriteString("\n")

	for _, id := range g.NodeIDs() {
		n := g.MustNode(id)
		attrs := fmtAttrs(g, n, opts)
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeName(id), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, c := range g.Connections() {
		out, _ := g.Output(c.From)
		in, _ := g.Input(c.To)
		fmt.Fprintf(&buf, "  %s:o%d:e -> %s:i%d:w;\n", nodeName(out.Node), c.From, nodeName(in.Node), c.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeName(id dag.NodeID) string {
	return "n" + strconv.Itoa(int(id))
}

// fmtLabel builds a record label: inputs | title | outputs. The outer braces
// turn the record horizontal under rankdir=LR.
func fmtLabel(g *dag.Graph, n *dag.Node, detailed bool) string {
	var ins, outs []string
	for _, id := range n.Inputs {
		in, _ := g.Input(id)
		text := in.Name
		if detailed && in.Value != nil {
			if _, wired := g.Connection(id); !wired {
				text += " = " + in.Value.Render()
			}
		}
		ins = append(ins, fmt.Sprintf("<i%d> %s", id, escapeRecord(text)))
	}
	for _, id := range n.Outputs {
		out, _ := g.Output(id)
		outs = append(outs, fmt.Sprintf("<o%d> %s", id, escapeRecord(out.Name)))
	}

	parts := make([]string, 0, 3)
	if len(ins) > 0 {
		parts = append(parts, "{"+strings.Join(ins, "|")+"}")
	}
	parts = append(parts, escapeRecord(n.Label()))
	if len(outs) > 0 {
		parts = append(parts, "{"+strings.Join(outs, "|")+"}")
	}
	return "{" + strings.Join(parts, "|") + "}"
}

func fmtAttrs(g *dag.Graph, n *dag.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(g, n, opts.Detailed))}
	if n.Output {
		attrs = append(attrs, "fillcolor=\"#ffe08a\"", "penwidth=2")
	}
	if opts.Pinned {
		// Graphviz y grows upwards.
		attrs = append(attrs, fmt.Sprintf("pos=\"%.1f,%.1f!\"", n.Position.X, -n.Position.Y))
	}
	return attrs
}

var recordSpecial = strings.NewReplacer(
	`\`, `\\`,
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
	`"`, `\"`,
)

func escapeRecord(s string) string {
	return recordSpecial.Replace(s)
}

// RenderSVG renders a DOT graph to SVG using the given Graphviz engine.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string, engine graphviz.Layout) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(engine)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one that
// scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(header))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string, engine graphviz.Layout) ([]byte, error) {
	svg, err := RenderSVG(dot, engine)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, engine graphviz.Layout, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot, engine)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
