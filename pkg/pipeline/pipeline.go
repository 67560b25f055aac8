// Package pipeline runs the script ⇄ graph round trip for every entry point.
//
// The CLI, the HTTP server and the watch preview all go through a [Runner]
// so caching, logging and instrumentation behave the same everywhere.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Import: parse script text and materialize it as a node graph
//  2. Layout: position the nodes so data flows left to right into the sink
//  3. Generate: evaluate the graph back into script text
//  4. Render: draw the graph as SVG, PNG, PDF or DOT, or export JSON/YAML
//
// Each stage can be run independently or as part of [Runner.Execute]. Every
// stage is a pure function of its input, so results are cached under
// content-addressed keys.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Script:  "def main(a) (48*(11+a)) end",
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Text) // def main(a) (48*(11+a)) end
//
// Run individual stages:
//
//	g, sigs, err := runner.Import(ctx, src, opts)
//	lay, err := runner.Layout(ctx, g, sigs, opts)
//	text, err := runner.Generate(ctx, g, sigs)
//	artifacts, err := runner.Render(ctx, g, sigs, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wzrd/pkg/cache"
	"github.com/matzehuels/wzrd/pkg/core/dag"
	"github.com/matzehuels/wzrd/pkg/core/importer"
	"github.com/matzehuels/wzrd/pkg/core/layout"
	wzerrors "github.com/matzehuels/wzrd/pkg/errors"
	"github.com/matzehuels/wzrd/pkg/graph"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Watch
// =============================================================================

const (
	// DefaultHGap is the horizontal gap between layout columns.
	DefaultHGap = layout.DefaultHGap

	// DefaultVGap is the vertical gap between stacked nodes.
	DefaultVGap = layout.DefaultVGap

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatJSON: true,
	FormatYAML: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Import options
	Script  string `json:"script,omitempty"`
	Refresh bool   `json:"refresh,omitempty"`

	// Layout options
	HGap     float64 `json:"hgap,omitempty"`
	VGap     float64 `json:"vgap,omitempty"`
	NoLayout bool    `json:"no_layout,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Pinned   bool     `json:"pinned,omitempty"`
	Scale    float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the imported (and laid out) node graph.
	Graph *dag.Graph

	// Signatures is the function signature stack recorded during import.
	Signatures *importer.SignatureStack

	// GraphHash is the content hash of the serialized graph.
	GraphHash string

	// Text is the script text generated back from the graph.
	Text string

	// Layout holds the computed positions. Zero when NoLayout is set.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount       int
	ConnectionCount int
	ImportTime      time.Duration
	LayoutTime      time.Duration
	GenerateTime    time.Duration
	RenderTime      time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ImportHit   bool
	LayoutHit   bool
	GenerateHit bool
	RenderHit   bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return wzerrors.New(wzerrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, dot, json, yaml)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateForImport checks the script and sets the logger default.
func (o *Options) ValidateForImport() error {
	o.setLogger()
	return wzerrors.ValidateScript(o.Script)
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.HGap == 0 {
		o.HGap = DefaultHGap
	}
	if o.VGap == 0 {
		o.VGap = DefaultVGap
	}
	o.setLogger()
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if o.HGap < 0 || o.VGap < 0 {
		return wzerrors.New(wzerrors.ErrCodeInvalidInput, "layout gaps must not be negative")
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Scale < 0 {
		return wzerrors.New(wzerrors.ErrCodeInvalidInput, "scale must be positive")
	}
	return ValidateFormats(o.Formats)
}

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForImport(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutOptions returns the layout engine options.
func (o *Options) LayoutOptions() layout.Options {
	opts := layout.DefaultOptions()
	opts.HGap = o.HGap
	opts.VGap = o.VGap
	return opts
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{HGap: o.HGap, VGap: o.VGap}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Detailed: o.Detailed, Pinned: o.Pinned}
}
