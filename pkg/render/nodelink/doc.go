// Package nodelink renders dataflow graphs as node-link diagrams.
//
// # Overview
//
// Each graph node becomes a Graphviz record with its input ports on the
// left, its label in the middle and its output ports on the right.
// Connections run from an output port to an input port, so the diagram
// reads left to right into the sink the same way the auto-layout does.
//
// # Usage
//
// Convert a graph to DOT, then render to SVG:
//
//	opts := nodelink.Options{Detailed: true}
//	dot := nodelink.ToDOT(g, opts)
//	svg, err := nodelink.RenderSVG(dot, opts.Engine())
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(dot, opts.Engine())
//	png, err := nodelink.RenderPNG(dot, opts.Engine(), 2.0)  // 2x scale
//
// # Options
//
//   - Detailed: input ports show their literal values
//   - Pinned: nodes keep their graph positions; rendering switches to the
//     neato engine, which honors pinned coordinates
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
