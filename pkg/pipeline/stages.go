package pipeline

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wzrd/pkg/core/dag"
	"github.com/matzehuels/wzrd/pkg/core/importer"
	"github.com/matzehuels/wzrd/pkg/core/layout"
	"github.com/matzehuels/wzrd/pkg/core/template"
	wzerrors "github.com/matzehuels/wzrd/pkg/errors"
	"github.com/matzehuels/wzrd/pkg/graph"
	"github.com/matzehuels/wzrd/pkg/render/nodelink"
	"github.com/matzehuels/wzrd/pkg/script"
)

// =============================================================================
// Import
// =============================================================================

// Import parses src and materializes it as a fresh graph. Syntax errors are
// reported with code INVALID_SCRIPT; constructs the importer does not know are
// dropped, not rejected.
func Import(src string, cat *template.Catalog, logger *log.Logger) (*dag.Graph, *importer.SignatureStack, error) {
	if err := wzerrors.ValidateScript(src); err != nil {
		return nil, nil, err
	}
	root, err := script.Parse(src)
	if err != nil {
		return nil, nil, wzerrors.Wrap(wzerrors.ErrCodeInvalidScript, err, "parse script")
	}
	if cat == nil {
		cat = template.NewCatalog()
	}

	im := importer.New(cat, logger)
	g := dag.New()
	importer.Materialize(g, im.Import(root), nil)
	return g, im.Signatures(), nil
}

// =============================================================================
// Layout
// =============================================================================

// GenerateLayout computes positions for g without modifying it. Node sizes
// are estimated from labels and port counts.
func GenerateLayout(g *dag.Graph, opts Options) (graph.Layout, error) {
	res, ok := layout.Compute(g, layout.EstimateBoxes(g), opts.LayoutOptions())
	if !ok {
		return graph.Layout{}, wzerrors.New(wzerrors.ErrCodeInvalidGraph, "graph has no sink")
	}
	return graph.FromLayout(res), nil
}

// =============================================================================
// Render
// =============================================================================

// Render generates output artifacts in the requested formats. JSON and YAML
// export the graph document; the others draw it.
func Render(g *dag.Graph, sigs *importer.SignatureStack, opts Options) (map[string][]byte, error) {
	nlOpts := nodelink.Options{Detailed: opts.Detailed, Pinned: opts.Pinned}
	var dot string
	dotFor := func() string {
		if dot == "" {
			dot = nodelink.ToDOT(g, nlOpts)
		}
		return dot
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dotFor())
		case FormatSVG:
			data, err = nodelink.RenderSVG(dotFor(), nlOpts.Engine())
		case FormatPNG:
			data, err = nodelink.RenderPNG(dotFor(), nlOpts.Engine(), opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(dotFor(), nlOpts.Engine())
		case FormatJSON:
			data, err = graph.MarshalGraph(g, sigs)
		case FormatYAML:
			data, err = graph.MarshalYAML(g, sigs)
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
